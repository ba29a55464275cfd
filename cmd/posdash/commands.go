package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/h0rv/posdash/internal/catalog"
	"github.com/h0rv/posdash/internal/domain"
	"github.com/h0rv/posdash/internal/invoice"
	"github.com/h0rv/posdash/internal/listview"
	"github.com/h0rv/posdash/internal/logger"
	"github.com/h0rv/posdash/internal/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session",
		Long: `Sign in with email and password and cache the returned token.

The password is read from stdin when --password is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				email = e.cfg.Auth.Email
			}
			if email == "" {
				if email, err = prompt(cmd, in, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(cmd, in, "Password: "); err != nil {
					return err
				}
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			ctx, cancel := signalContext()
			defer cancel()

			sess, err := e.client.Login(ctx, domain.Credentials{Identifier: email, Password: password})
			if err != nil {
				return fmt.Errorf("login failed: %s", domain.Detail(err))
			}
			if err := e.sessions.Save(*sess); err != nil {
				return err
			}
			e.log.Info("signed in", zap.String("user", sess.User.Username))
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s. Session saved to %s\n", displayName(sess.User), e.sessions.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email. Defaults to auth.email.")
	cmd.Flags().StringVar(&password, "password", "", "Account password.")
	return cmd
}

func registerCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and cache its session",
		Long: `Create an account on the content API and cache the returned token.

Missing values are read from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			in := bufio.NewReader(cmd.InOrStdin())
			for _, f := range []struct {
				value *string
				label string
			}{
				{&username, "Username: "},
				{&email, "Email: "},
				{&password, "Password: "},
			} {
				if *f.value != "" {
					continue
				}
				if *f.value, err = prompt(cmd, in, f.label); err != nil {
					return err
				}
			}
			if username == "" || email == "" || password == "" {
				return errors.New("username, email and password are required")
			}

			ctx, cancel := signalContext()
			defer cancel()

			sess, err := e.client.Register(ctx, domain.Registration{Username: username, Email: email, Password: password})
			if err != nil {
				return fmt.Errorf("registration failed: %s", domain.Detail(err))
			}
			if err := e.sessions.Save(*sess); err != nil {
				return err
			}
			e.log.Info("registered", zap.String("user", sess.User.Username))
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Session saved to %s\n", displayName(sess.User), e.sessions.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Account username.")
	cmd.Flags().StringVar(&email, "email", "", "Account email.")
	cmd.Flags().StringVar(&password, "password", "", "Account password.")
	return cmd
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func displayName(u domain.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the cached session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if err := e.sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func invoiceCmd() *cobra.Command {
	var (
		out  string
		open bool
		text bool
	)
	cmd := &cobra.Command{
		Use:   "invoice <documentId>",
		Short: "Export the invoice of a sale as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signalContext()
			defer cancel()

			if err := e.authenticate(ctx); err != nil {
				return err
			}
			sale, err := e.client.GetSale(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load invoice: %s", domain.Detail(err))
			}
			inv := invoice.FromSale(*sale)

			if text {
				fmt.Fprintln(cmd.OutOrStdout(), invoice.Text(inv, 80))
				return nil
			}

			path := out
			if path == "" || strings.HasSuffix(path, string(filepath.Separator)) {
				path = filepath.Join(path, inv.Filename())
			} else if st, err := os.Stat(path); err == nil && st.IsDir() {
				path = filepath.Join(path, inv.Filename())
			}
			if err := invoice.Export(inv, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice saved to %s\n", path)

			if open {
				return invoice.OpenFile(path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or directory. Defaults to INVOICE_<number>.pdf in the working directory.")
	cmd.Flags().BoolVar(&open, "open", false, "Open the PDF after exporting.")
	cmd.Flags().BoolVar(&text, "text", false, "Print the invoice as text instead of writing a PDF.")
	return cmd
}

// checkCmd exercises the API end to end: session, summary and the first page of each list.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the API connection and session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signalContext()
			defer cancel()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "API: %s\n", e.cfg.API.BaseURL)
			if err := e.authenticate(ctx); err != nil {
				return err
			}

			summary, err := e.client.SalesSummary(ctx)
			if err != nil {
				return fmt.Errorf("failed to load sales summary: %s", domain.Detail(err))
			}
			fmt.Fprintln(w, "\nSummary:")
			for _, p := range domain.SummaryPeriods {
				s, ok := summary[p]
				if !ok {
					continue
				}
				fmt.Fprintf(w, "  %-11s %4d sales  $%.2f revenue\n", p, s.Count, s.TotalRevenue)
			}

			sizes, size := e.cfg.UI.PageSizes, e.cfg.UI.DefaultPageSize
			if err := checkList(ctx, w, catalog.Sales(sizes, size), e.client.Sales(), func(s domain.Sale) string {
				return fmt.Sprintf("%-14s %-24s $%.2f", s.InvoiceNumber, s.CustomerName, s.Total)
			}); err != nil {
				return err
			}
			if err := checkList(ctx, w, catalog.Products(sizes, size), e.client.Products(), func(p domain.Product) string {
				return fmt.Sprintf("%-30s $%-10.2f stock %d", p.Name, p.Price, p.Stock)
			}); err != nil {
				return err
			}
			if err := checkList(ctx, w, catalog.Categories(sizes, size), e.client.Categories(), func(c domain.Category) string {
				return c.Name
			}); err != nil {
				return err
			}
			return nil
		},
	}
}

// checkList loads the first page of screen through a list controller and prints it.
func checkList[T any](ctx context.Context, w io.Writer, screen catalog.Screen, fetcher listview.Fetcher[T], row func(T) string) error {
	ctrl := listview.New(screen.List, fetcher, notify.Discard,
		listview.WithContext(ctx), listview.WithLogger(logger.Named("listview")))
	defer ctrl.Close()

	ctrl.Load().Do()
	state := ctrl.State()
	if state.Err != nil {
		return fmt.Errorf("%s: %s", screen.List.FailureMessage, domain.Detail(state.Err))
	}
	fmt.Fprintf(w, "\n%s: %s\n", screen.Title, ctrl.Summary())
	for _, r := range state.Rows() {
		fmt.Fprintf(w, "  %s\n", row(r))
	}
	return nil
}
