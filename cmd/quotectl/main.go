package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrreynao/widgetamericanrent/internal/auth"
	"github.com/jrreynao/widgetamericanrent/internal/config"
	"github.com/jrreynao/widgetamericanrent/internal/entities"
	"github.com/jrreynao/widgetamericanrent/internal/logger"
	"github.com/jrreynao/widgetamericanrent/internal/repository"
	"github.com/jrreynao/widgetamericanrent/internal/service"
	"github.com/jrreynao/widgetamericanrent/internal/web"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg     *config.Config
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Herramientas para el backend de cotizaciones",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "timeout por comando")

	withTimeout := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		return context.WithTimeout(cmd.Context(), timeout)
	}

	// render
	var outDir string
	renderCmd := &cobra.Command{
		Use:   "render <form.json>",
		Short: "Renderiza ambos correos para un formulario, sin enviarlos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			req, err := decodeRenderInput(raw)
			if err != nil {
				return err
			}

			catalog, err := service.LoadCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			store := service.NewTemplateStore(service.TemplateStoreConfig{BaseURL: cfg.FrontendBase, Embedded: web.TemplatesFS})
			cliente, admin, err := store.Resolve(ctx, req.HTMLCliente, req.HTMLAdmin)
			if err != nil {
				return err
			}

			q := service.NewDeriver(catalog, service.DeriverConfig{
				BusinessWhatsApp: cfg.BusinessWhatsApp,
				AgencyAddress:    cfg.AgencyAddress,
				AgencyMapURL:     cfg.AgencyMapURL,
			}).Build(req.Form)

			return writeRendered(cmd, outDir, q, service.Render(cliente, q.Tokens), service.Render(admin, q.Tokens))
		},
	}
	renderCmd.Flags().StringVarP(&outDir, "out", "o", "", "directorio donde escribir correo_cliente.html y correo_admin.html")

	// verify-smtp
	verifyCmd := &cobra.Command{
		Use:   "verify-smtp",
		Short: "Conecta y autentica contra el transporte de correo sin enviar",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			st := service.NewJobService(service.NewMailSender(cfg), nil).ProbeSMTP(ctx)
			printJSON(cmd, st)
			if !st.OK {
				return fmt.Errorf("verify failed (%s)", st.Code)
			}
			return nil
		},
	}

	// send-test
	var key string
	sendTestCmd := &cobra.Command{
		Use:   "send-test",
		Short: "Envía un correo de prueba a ADMIN_EMAIL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !auth.NewTestKey(cfg.SMTPTestKey).Matches(key) {
				return fmt.Errorf("forbidden: --key no coincide con SMTP_TEST_KEY")
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			res, err := service.NewMailSender(cfg).Send(ctx, service.Message{
				FromName:  "Test",
				FromEmail: cfg.SMTPEnvelopeFrom(),
				To:        cfg.AdminEmail,
				Subject:   "SMTP test",
				Text:      "Test message from quotectl send-test",
			})
			if err != nil {
				return fmt.Errorf("send (%s): %w", service.DiagnoseSMTP(err).Code, err)
			}
			printJSON(cmd, res)
			return nil
		},
	}
	sendTestCmd.Flags().StringVar(&key, "key", "", "clave de prueba")

	// catalog
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Imprime el catálogo cargado en YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			catalog, err := service.LoadCatalog(ctx, cfg)
			if err != nil {
				return err
			}
			out, err := repository.MarshalCatalogYAML(catalog.Data())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n%s", catalog.Source(), out)
			return nil
		},
	}

	root.AddCommand(renderCmd, verifyCmd, sendTestCmd, catalogCmd)
	return root
}

// decodeRenderInput accepts a full request body ({"form": ...}) or a bare form.
func decodeRenderInput(raw []byte) (*entities.QuoteRequest, error) {
	var req entities.QuoteRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if req.Form == nil {
		var form entities.BookingForm
		if err := json.Unmarshal(raw, &form); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		req.Form = &form
	}
	return &req, nil
}

func writeRendered(cmd *cobra.Command, dir string, q service.Quote, cliente, admin string) error {
	if dir == "" {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "<!-- orden %d: %s -->\n%s\n", q.OrderID, service.ClienteTemplate, cliente)
		fmt.Fprintf(out, "<!-- orden %d: %s -->\n%s\n", q.OrderID, service.AdminTemplate, admin)
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := map[string]string{service.ClienteTemplate: cliente, service.AdminTemplate: admin, "whatsapp.txt": q.WhatsAppText}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "orden %d escrita en %s\n", q.OrderID, dir)
	return nil
}

func printJSON(cmd *cobra.Command, v any) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
