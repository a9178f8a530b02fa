package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/arsipku/arsipd/pkg/arsipdb"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/clog"
	"github.com/arsipku/arsipd/pkg/config"
	"github.com/arsipku/arsipd/pkg/klasifikasi"
	"github.com/arsipku/arsipd/pkg/notify"
	"github.com/arsipku/arsipd/pkg/pemindahan"
	"github.com/arsipku/arsipd/pkg/webapi"
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "arsipd",
	Short: "Run the arsipd archive transfer API server",
	Long: `Run the arsipd archive transfer API server. Records officers move approved
active archives of their unit to inactive storage through /api/pemindahan.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := Run(cmd.Context()); err != nil {
			log.Fatalf("arsipd: %s", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("dotenv", "", "dotenv file to load (default is "+config.DefaultDotenvPath+")")
	rootCmd.Flags().String("port", "", "port for the API server")
	rootCmd.Flags().String("admin-port", "", "localhost port for the logging endpoints")

	_ = viper.BindPFlag("dotenv", rootCmd.PersistentFlags().Lookup("dotenv"))
	_ = viper.BindPFlag("port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("admin-port", rootCmd.Flags().Lookup("admin-port"))

	_ = viper.BindEnv("dotenv", "ARSIPD_DOTENV_PATH")
	_ = viper.BindEnv("port", "ARSIPD_PORT")
	_ = viper.BindEnv("admin-port", "ARSIPD_ADMIN_PORT")
	viper.SetDefault("port", "8570")
	viper.SetDefault("admin-port", "8571")
}

func loadConfig() {
	if path := viper.GetString("dotenv"); path != "" {
		if err := config.LoadFromPath(path); err != nil {
			log.Fatalf("Failed loading configuration file %s: %s", path, err)
		}
	} else {
		config.MustLoadFromDotenv()
	}

	level := config.GetKeyWithDefault("ARSIPD_LOG_LEVEL", "info")
	if err := clog.SetGlobalLoggerLevelFromString(level); err != nil {
		log.Warnf("Ignoring ARSIPD_LOG_LEVEL %q: %s", level, err)
	}
}

func Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db := arsipdb.MustConnectToDB()
	stors := stor.NewGormStors(db)

	hub := notify.NewSSEHub(stors.UserStor)
	dispatchers := []notify.Dispatcher{hub, notify.NewLogDispatcher()}
	if notifyURL := config.GetKey("ARSIPD_NOTIFY_URL"); notifyURL != "" {
		log.Infof("Sending notifications to %s", notifyURL)
		dispatchers = append(dispatchers, notify.NewHTTPDispatcher(notifyURL))
	}

	svc := pemindahan.NewService(stors, klasifikasi.NewResolver(stors.ClassificationStor), notify.NewFanout(dispatchers...),
		pemindahan.Settings{
			ApprovalPollInterval: config.GetDurationKeyWithDefault("ARSIPD_APPROVAL_POLL_INTERVAL", pemindahan.DefaultApprovalPollInterval),
			AppURL:               config.GetKey("ARSIPD_APP_URL"),
			MigrationLogDir:      migrationLogDir(),
		})

	e := newEcho()
	setupExternalRoutes(e, RouteDependencies{stors: stors, svc: svc, hub: hub})

	admin := newEcho()
	setupInternalRoutes(admin, config.GetKeyWithDefault("ARSIPD_LOG_LEVEL", "info"))

	servers := map[string]*echo.Echo{
		":" + viper.GetString("port"):               e,
		"localhost:" + viper.GetString("admin-port"): admin,
	}

	for addr, server := range servers {
		go func(addr string, server *echo.Echo) {
			log.Infof("Listening on %s", addr)
			if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Unable to start server on %s: %s", addr, err)
			}
		}(addr, server)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	for _, server := range servers {
		errs = append(errs, server.Shutdown(shutdownCtx))
	}

	svc.WaitForNotifications()

	return errors.Join(errs...)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = webapi.NewRequestValidator()
	return e
}

func migrationLogDir() string {
	dir := config.GetKey("ARSIPD_MIGRATION_LOG_DIR")
	if dir == "" {
		return ""
	}

	expanded, err := homedir.Expand(dir)
	if err != nil {
		log.Fatalf("Invalid ARSIPD_MIGRATION_LOG_DIR %q: %s", dir, err)
	}

	return expanded
}
