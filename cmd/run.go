package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	target "github.com/coeff/target-cassandra"
	"github.com/coeff/target-cassandra/checkpoint"
	"github.com/coeff/target-cassandra/health"
	"github.com/coeff/target-cassandra/internal/config"
	"github.com/coeff/target-cassandra/internal/server"
	"github.com/coeff/target-cassandra/schema"
	"github.com/coeff/target-cassandra/sink/cassandra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replicate a Singer message stream from stdin into Cassandra",
	Long: `Reads newline-delimited Singer messages, materializes one Cassandra
table per declared stream, and writes every record synchronously. On clean
exit the final pending STATE value is emitted as one JSON line on stdout.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()

	f.StringSlice("contact-point", nil, "Cassandra contact point (repeatable)")
	f.Int("port", 9042, "Cassandra native protocol port")
	f.String("keyspace", "", "keyspace holding the replicated tables")
	f.String("username", "", "Cassandra username")
	f.String("password", "", "Cassandra password")
	f.Int("protocol-version", 4, "CQL protocol version")
	f.String("consistency", "quorum", "write consistency level")
	f.Duration("timeout", 10*time.Second, "per-query timeout")
	f.String("key-policy", "fail", "unsupported key property policy: fail or drop")
	f.String("metrics-addr", "", "metrics/health server address (e.g. :9090), empty to disable")
	f.String("input", "-", "input file ('-' for stdin)")

	mustBindPFlag("cassandra.contact_points", f.Lookup("contact-point"))
	mustBindPFlag("cassandra.port", f.Lookup("port"))
	mustBindPFlag("cassandra.keyspace", f.Lookup("keyspace"))
	mustBindPFlag("cassandra.username", f.Lookup("username"))
	mustBindPFlag("cassandra.password", f.Lookup("password"))
	mustBindPFlag("cassandra.protocol_version", f.Lookup("protocol-version"))
	mustBindPFlag("cassandra.consistency", f.Lookup("consistency"))
	mustBindPFlag("cassandra.timeout", f.Lookup("timeout"))
	mustBindPFlag("key_policy", f.Lookup("key-policy"))
	mustBindPFlag("metrics_addr", f.Lookup("metrics-addr"))
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.Default().With("run_id", uuid.NewString())

	input, closeInput, err := openInput(cmd)
	if err != nil {
		return err
	}
	defer closeInput()

	consistency, err := gocql.ParseConsistencyWrapper(cfg.Cassandra.Consistency)
	if err != nil {
		return fmt.Errorf("parse consistency: %w", err)
	}

	checker := health.NewChecker()
	checker.Register("cassandra")

	snk, err := cassandra.Connect(cassandra.Config{
		ContactPoints:   cfg.Cassandra.ContactPoints,
		Port:            cfg.Cassandra.Port,
		Keyspace:        cfg.Cassandra.Keyspace,
		Username:        cfg.Cassandra.Username,
		Password:        cfg.Cassandra.Password,
		ProtocolVersion: cfg.Cassandra.ProtocolVersion,
		Consistency:     consistency,
		Timeout:         cfg.Cassandra.Timeout,
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = snk.Close() }()
	checker.SetStatus("cassandra", health.StatusUp)

	policy := schema.KeyPolicyFail
	if cfg.KeyPolicy == "drop" {
		policy = schema.KeyPolicyDrop
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	srvCtx, srvDone := context.WithCancel(gCtx)
	defer srvDone()

	if cfg.MetricsAddr != "" {
		srv := server.NewMetricsServer(checker)
		ln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.MetricsAddr, err)
		}
		logger.Info("metrics server listening", "addr", ln.Addr().String())

		g.Go(func() error {
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-srvCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	var finalState json.RawMessage
	g.Go(func() error {
		defer srvDone()
		proc := target.New(snk,
			target.WithLogger(logger),
			target.WithKeyPolicy(policy),
		)
		state, err := proc.Run(gCtx, input)
		if err != nil {
			return err
		}
		finalState = state
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if err := checkpoint.Emit(os.Stdout, finalState); err != nil {
		return err
	}
	logger.Debug("exiting normally")
	return nil
}

func openInput(cmd *cobra.Command) (io.Reader, func(), error) {
	path, _ := cmd.Flags().GetString("input")
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}
