// Command wildwatch is the terminal client for Wild Watch. Its watch
// subcommand hosts the alert synchronization engine: it polls the alert
// API while a session is live and the terminal is in the foreground, and
// surfaces newly detected wildlife as notifications.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/alert"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/client"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/config"
	"github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/notify"
	enginesync "github.com/Heyniki07/Wild-Watch-YOLO-based-object-detection/internal/sync"
)

var (
	serverURL string
	accessKey string
	logLevel  string
	log       = logrus.New()
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadClient()

	root := &cobra.Command{
		Use:   "wildwatch",
		Short: "Wild Watch terminal client",
		Long:  "Watches for wildlife detection alerts near your location and reports detections.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level %q", logLevel)
			}
			log.SetLevel(level)
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&serverURL, "server", cfg.ServerURL, "alert API base URL")
	root.PersistentFlags().StringVar(&accessKey, "access-key", cfg.AccessKey, "account access key")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		watchCmd(),
		registerCmd(),
		ingestCmd(),
		nearestCmd(),
		statsCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// tableRenderer implements the presentation side of the engine by
// rewriting an alert table on every refresh.
type tableRenderer struct{}

func (tableRenderer) Present(vms []alert.ViewModel) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tSPECIES\tDISTANCE\tDETECTED")
	for _, vm := range vms {
		fmt.Fprintf(w, "%s\t%s\t%.1fkm\t%s\n", vm.Severity, vm.Species, vm.DistanceKM, vm.AgeLabel)
	}
	_ = w.Flush()
}

func watchCmd() *cobra.Command {
	var species string
	var timeRange string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for alerts and surface new detections",
		RunE: func(cmd *cobra.Command, args []string) error {
			if accessKey == "" {
				return fmt.Errorf("an access key is required (--access-key or WILDWATCH_ACCESS_KEY)")
			}

			api := client.New(serverURL, log)
			if _, err := api.CreateSession(cmd.Context(), accessKey); err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}

			notifier := notify.New(os.Stdout, !quiet, log)
			dispatcher := enginesync.NewDispatcher(notifier, tableRenderer{}, log)
			dispatcher.SetCriteria(alert.FilterCriteria{
				Species:   species,
				TimeRange: alert.TimeRange(timeRange),
			})

			store := enginesync.NewStore(api, log)
			store.SetUpdateHandler(dispatcher)

			scheduler := enginesync.NewScheduler(store, enginesync.DefaultPollInterval, log)
			store.SetSessionExpiredHook(scheduler.HandleDeauthenticated)

			store.StartSession()
			scheduler.HandleAuthenticated()
			scheduler.HandlePageShown()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			scheduler.HandlePageHidden()
			scheduler.Wait()
			store.EndSession()
			_ = api.EndSession(context.Background())
			log.Info("watch stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&species, "species", "", "only show one species")
	cmd.Flags().StringVar(&timeRange, "range", "all", "time range (all, 1h, 24h, 7d)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress alert notifications")
	return cmd
}

func registerCmd() *cobra.Command {
	var name, email string
	var lat, lon, radius float64

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and print its access key",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := client.New(serverURL, log)
			resp, err := api.Register(cmd.Context(), client.RegisterRequest{
				Name:      name,
				Email:     email,
				Latitude:  lat,
				Longitude: lon,
				RadiusKM:  radius,
			})
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			fmt.Printf("registered user %d (%s)\naccess key: %s\n", resp.UserID, resp.Email, resp.AccessKey)
			fmt.Println("store the key in WILDWATCH_ACCESS_KEY; it is not shown again")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().Float64Var(&lat, "lat", 0, "home latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "home longitude")
	cmd.Flags().Float64Var(&radius, "radius", 5, "alert radius in km")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func ingestCmd() *cobra.Command {
	var species string
	var lat, lon, confidence float64

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Report a wildlife detection",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newSessionClient(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := api.IngestDetection(cmd.Context(), species, lat, lon, confidence)
			if err != nil {
				return fmt.Errorf("failed to report detection: %w", err)
			}
			fmt.Printf("detection %d recorded, %d alert(s) created\n", resp.DetectionID, resp.AlertsCreated)
			return nil
		},
	}

	cmd.Flags().StringVar(&species, "species", "", "detected species")
	cmd.Flags().Float64Var(&lat, "lat", 0, "detection latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "detection longitude")
	cmd.Flags().Float64Var(&confidence, "confidence", 95, "detection confidence percentage")
	_ = cmd.MarkFlagRequired("species")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func nearestCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "nearest",
		Short: "Find the nearest wildlife crime control office",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := client.New(serverURL, log)
			nearest, err := api.NearestAuthority(cmd.Context(), lat, lon)
			if err != nil {
				return fmt.Errorf("lookup failed: %w", err)
			}
			if nearest == nil {
				fmt.Println("no authority center found")
				return nil
			}
			fmt.Printf("%s (%.1fkm)\nemail: %s\nphone: %s\n",
				nearest.Name, nearest.DistanceKM, nearest.Email, nearest.Phone)
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-species alert counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newSessionClient(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := api.FetchStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch stats: %w", err)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SPECIES\tALERTS")
			for species, count := range stats {
				fmt.Fprintf(w, "%s\t%d\n", species, count)
			}
			return w.Flush()
		},
	}
}

// newSessionClient creates an API client with a fresh session from the
// configured access key.
func newSessionClient(ctx context.Context) (*client.APIClient, error) {
	if accessKey == "" {
		return nil, fmt.Errorf("an access key is required (--access-key or WILDWATCH_ACCESS_KEY)")
	}
	api := client.New(serverURL, log)
	if _, err := api.CreateSession(ctx, accessKey); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return api, nil
}
