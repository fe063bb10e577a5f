package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/postwave/mailkit/core/config"
	"github.com/postwave/mailkit/core/mail"
	"github.com/postwave/mailkit/core/mail/templates"
	"github.com/postwave/mailkit/integration/smtp"
)

var version = "dev"

// connFlags are the SMTP connection flags shared by every subcommand.
type connFlags struct {
	configFile string
	server     string
	port       int
	user       string
	pass       string
	from       string
	useTLS     bool
	useSSL     bool
	timeout    time.Duration
	maxRetries int
}

func (f *connFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&f.server, "smtp-server", "", "SMTP server hostname")
	cmd.Flags().IntVar(&f.port, "smtp-port", 587, "SMTP server port")
	cmd.Flags().StringVar(&f.user, "smtp-user", "", "SMTP username")
	cmd.Flags().StringVar(&f.pass, "smtp-pass", "", "SMTP password")
	cmd.Flags().StringVar(&f.from, "from", "", "sender address (defaults to the SMTP username)")
	cmd.Flags().BoolVar(&f.useTLS, "use-tls", true, "upgrade the connection with STARTTLS")
	cmd.Flags().BoolVar(&f.useSSL, "use-ssl", false, "use an implicit TLS connection")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "connection timeout")
	cmd.Flags().IntVar(&f.maxRetries, "max-retries", 3, "connection retry attempts")
}

// fileConfig mirrors smtp.Config for the YAML config file.
type fileConfig struct {
	Server     string        `yaml:"smtp_server"`
	Port       int           `yaml:"smtp_port"`
	User       string        `yaml:"smtp_user"`
	Pass       string        `yaml:"smtp_pass"`
	From       string        `yaml:"from"`
	UseTLS     *bool  `yaml:"use_tls"`
	UseSSL     bool   `yaml:"use_ssl"`
	TimeoutSec int    `yaml:"timeout_seconds"`
	MaxRetries *int   `yaml:"max_retries"`
}

// resolve builds the SMTP configuration: an explicit config file wins, then
// connection flags, then SMTP_* environment variables.
func (f *connFlags) resolve() (smtp.Config, error) {
	if f.configFile != "" {
		return loadConfigFile(f.configFile)
	}

	if f.server != "" {
		return smtp.Config{
			Host:       f.server,
			Port:       f.port,
			Username:   f.user,
			Password:   f.pass,
			From:       f.from,
			UseTLS:     f.useTLS,
			UseSSL:     f.useSSL,
			Timeout:    f.timeout,
			MaxRetries: f.maxRetries,
			RetryDelay: 500 * time.Millisecond,
		}, nil
	}

	var cfg smtp.Config
	if err := config.Load(&cfg); err != nil {
		return smtp.Config{}, fmt.Errorf("no SMTP configuration: use --config, --smtp-server or SMTP_* environment variables: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string) (smtp.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return smtp.Config{}, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return smtp.Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := smtp.Config{
		Host:       fc.Server,
		Port:       587,
		Username:   fc.User,
		Password:   fc.Pass,
		From:       fc.From,
		UseTLS:     true,
		UseSSL:     fc.UseSSL,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if fc.UseTLS != nil {
		cfg.UseTLS = *fc.UseTLS
	}
	if fc.TimeoutSec != 0 {
		cfg.Timeout = time.Duration(fc.TimeoutSec) * time.Second
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	return cfg, nil
}

func newSendCmd() *cobra.Command {
	var (
		conn    connFlags
		to      []string
		cc      []string
		bcc     []string
		replyTo string
		subject string
		body    string
		html    bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a simple email",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conn.resolve()
			if err != nil {
				return err
			}

			opts := []mail.MessageOption{}
			if html {
				opts = append(opts, mail.WithHTML())
			}
			if len(cc) > 0 {
				opts = append(opts, mail.WithCc(cc...))
			}
			if len(bcc) > 0 {
				opts = append(opts, mail.WithBcc(bcc...))
			}
			if replyTo != "" {
				opts = append(opts, mail.WithReplyTo(replyTo))
			}

			res, err := smtp.SendQuick(cmd.Context(), cfg, to, subject, body, opts...)
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}

	conn.register(cmd)
	cmd.Flags().StringSliceVarP(&to, "to", "t", nil, "recipient address (repeatable)")
	cmd.Flags().StringSliceVar(&cc, "cc", nil, "carbon-copy address (repeatable)")
	cmd.Flags().StringSliceVar(&bcc, "bcc", nil, "blind carbon-copy address (repeatable)")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "reply-to address")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "email subject")
	cmd.Flags().StringVarP(&body, "body", "b", "", "email body")
	cmd.Flags().BoolVar(&html, "html", false, "send as HTML email")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var (
		conn        connFlags
		to          []string
		name        string
		templateDir string
		builtin     bool
		contextJSON string
		subjectTmpl string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Render a template and send it as an HTML email",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conn.resolve()
			if err != nil {
				return err
			}

			data := map[string]any{}
			if contextJSON != "" {
				if err := json.Unmarshal([]byte(contextJSON), &data); err != nil {
					return fmt.Errorf("invalid JSON context: %w", err)
				}
			}

			var renderer *templates.Renderer
			switch {
			case builtin:
				renderer = templates.Builtin()
			case templateDir != "":
				renderer = templates.New(templateDir)
			default:
				return fmt.Errorf("either --template-dir or --builtin is required")
			}

			subject, body, err := renderer.RenderEmail(name, subjectTmpl, data)
			if err != nil {
				return err
			}

			res, err := smtp.SendQuick(cmd.Context(), cfg, to, subject, body, mail.WithHTML())
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}

	conn.register(cmd)
	cmd.Flags().StringSliceVarP(&to, "to", "t", nil, "recipient address (repeatable)")
	cmd.Flags().StringVar(&name, "template", "", "template file name, e.g. welcome.html")
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "directory containing templates")
	cmd.Flags().BoolVar(&builtin, "builtin", false, "use the built-in templates")
	cmd.Flags().StringVar(&contextJSON, "context", "", "JSON object with template data")
	cmd.Flags().StringVar(&subjectTmpl, "subject", "", "subject template, e.g. 'Welcome {{.user_name}}'")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newTestCmd() *cobra.Command {
	var conn connFlags

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the SMTP connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conn.resolve()
			if err != nil {
				return err
			}

			mailer, err := smtp.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = mailer.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()

			if err := mailer.Ping(ctx); err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}
			cmd.Println("SMTP connection OK")
			return nil
		},
	}

	conn.register(cmd)
	return cmd
}

// report prints the send outcome and turns a failed result into a non-zero
// exit without a usage dump.
func report(cmd *cobra.Command, res *mail.Result) error {
	if !res.Success {
		return fmt.Errorf("failed to send email: %s", res.ErrorMessage)
	}
	cmd.Printf("Email sent to %d recipient(s)\n", len(res.Recipients))
	for _, r := range res.Recipients {
		cmd.Printf("  %s\n", r)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "mailkit",
		Short:         "Send email over SMTP from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSendCmd(), newTemplateCmd(), newTestCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
