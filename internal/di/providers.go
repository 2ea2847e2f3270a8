package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"FlowScan/internal/domain/repository"
	"FlowScan/internal/handler/api"
	internalrepo "FlowScan/internal/repository"
	"FlowScan/internal/service/binance"
	"FlowScan/internal/service/cache"
	"FlowScan/internal/service/coinmarketcap"
	"FlowScan/internal/service/ratelimit"
	"FlowScan/internal/usecase"
	pkgch "FlowScan/pkg/clickhouse"
	"FlowScan/pkg/config"
	xhttp "FlowScan/pkg/http"
	pkgkafka "FlowScan/pkg/kafka"
	"FlowScan/pkg/logger"
	"FlowScan/pkg/metrics"
	pkgredis "FlowScan/pkg/redis"
	"FlowScan/pkg/server"
)

const sinkTimeout = 10 * time.Second

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideBinanceClient creates the venue client serving catalog and evidence reads.
func ProvideBinanceClient(cfg *config.Config) *binance.Client {
	return binance.New(cfg.Binance.BaseURL, cfg.Binance.Timeout)
}

// ProvideCoinMarketCapClient creates the market-cap ranking client.
func ProvideCoinMarketCapClient(cfg *config.Config) *coinmarketcap.Client {
	return coinmarketcap.New(cfg.CoinMarketCap.BaseURL, cfg.CoinMarketCap.APIKey, cfg.CoinMarketCap.Timeout)
}

func ProvideUniverseResolver(cfg *config.Config, cmc *coinmarketcap.Client, bn *binance.Client, l *logger.Logger) *usecase.UniverseResolver {
	var catalog repository.InstrumentCatalog = bn
	if cfg.Binance.CatalogTTL > 0 {
		catalog = cache.NewCatalog(bn, cfg.Binance.CatalogTTL)
	}
	return usecase.NewUniverseResolver(cmc, catalog, usecase.UniverseOptions{
		Source:           cfg.Scan.UniverseSource,
		Target:           cfg.Scan.Target(),
		Headroom:         cfg.Scan.CandidateHeadroom,
		Quote:            cfg.Scan.Quote,
		RequirePerpetual: cfg.Scan.Mode == config.ModePattern,
	}, l.Named("universe"))
}

func ProvideFetcher(cfg *config.Config, bn *binance.Client, m repository.Metrics) *usecase.Fetcher {
	return usecase.NewFetcher(bn,
		ratelimit.NewThrottle(cfg.Throttle.TaskPause()),
		ratelimit.NewThrottle(cfg.Throttle.EvidenceDelay),
		usecase.FetchOptions{
			Depth:          cfg.Flow.Depth,
			TradesLimit:    cfg.Flow.TradesLimit,
			CandleInterval: cfg.Pattern.Interval,
			CandleLimit:    cfg.Pattern.Candles,
		}, m)
}

func ProvideScanner(cfg *config.Config, f *usecase.Fetcher, l *logger.Logger, m repository.Metrics) (*usecase.Scanner, error) {
	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report timezone: %w", err)
	}
	return usecase.NewScanner(f, usecase.ScannerOptions{
		Workers:       cfg.Scan.Workers,
		ProgressEvery: cfg.Scan.ProgressEvery,
		Location:      loc,
		ChartURLBase:  cfg.Report.ChartURLBase,
	}, l.Named("scanner"), m), nil
}

func ProvideSnapshotStore() *usecase.SnapshotStore {
	return usecase.NewSnapshotStore()
}

// ProvideSinks builds the log sink plus every enabled external sink. The cleanup
// closes them all.
func ProvideSinks(cfg *config.Config, l *logger.Logger, m repository.Metrics) (*internalrepo.Fanout, func(), error) {
	sinks := []repository.ReportSink{internalrepo.NewLogSink(l)}
	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if k := cfg.Sinks.Kafka; k.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(k.Brokers),
			pkgkafka.WithCompression(k.Compression),
			pkgkafka.WithRequiredAcks(k.RequiredAcks),
			pkgkafka.WithMaxAttempts(k.MaxAttempts),
			pkgkafka.WithTimeouts(k.WriteTimeout, k.WriteTimeout),
			pkgkafka.WithHashByKey(true),
			pkgkafka.WithRegisterer(prometheus.DefaultRegisterer),
		)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, internalrepo.NewKafkaSink(producer, internalrepo.KafkaTopics{
			Flow:    k.FlowTopic,
			Signals: k.SignalTopic,
			Reports: k.ReportTopic,
		}))
	}

	if c := cfg.Sinks.ClickHouse; c.Enabled {
		client, err := pkgch.NewClient(ctx,
			pkgch.WithHost(c.Host),
			pkgch.WithPort(c.Port),
			pkgch.WithCredentials(c.User, c.Password),
			pkgch.WithHTTP(c.UseHTTP),
			pkgch.WithTimeouts(c.DialTimeout, c.ReadTimeout),
		)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		sink := internalrepo.NewClickHouseSink(client, c.Database)
		if err := sink.Init(ctx); err != nil {
			_ = client.Close()
			closeAll()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		sinks = append(sinks, sink)
	}

	if r := cfg.Sinks.Redis; r.Enabled {
		client, err := pkgredis.NewClient(ctx,
			pkgredis.WithAddr(r.Addr),
			pkgredis.WithPassword(r.Password),
			pkgredis.WithDB(r.DB),
			pkgredis.WithPrefix(r.Prefix),
		)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("redis client: %w", err)
		}
		sinks = append(sinks, internalrepo.NewRedisSink(client, r.Channel, r.SnapshotTTL))
	}

	fanout := internalrepo.NewFanout(l.Named("sinks"), m, sinkTimeout, sinks...)
	l.Info("report sinks ready", logger.Strings("sinks", fanout.Sinks()))
	return fanout, func() {
		if err := fanout.Close(); err != nil {
			l.Warn("sink close error", logger.Error(err))
		}
	}, nil
}

func ProvideCycleScheduler(
	cfg *config.Config,
	resolver *usecase.UniverseResolver,
	scanner *usecase.Scanner,
	sink repository.ReportSink,
	store *usecase.SnapshotStore,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.CycleScheduler {
	return usecase.NewCycleScheduler(resolver, scanner, sink, store, m, l.Named("scheduler"), usecase.CycleOptions{
		Mode:            cfg.Scan.Mode,
		Schedule:        cfg.Scheduler.Mode,
		Interval:        cfg.Scheduler.Interval,
		SubtractElapsed: cfg.Scheduler.SubtractElapsed,
	})
}

// ProvideHTTPServer returns nil when the HTTP surface is disabled.
func ProvideHTTPServer(cfg *config.Config, l *logger.Logger, store *usecase.SnapshotStore) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	return xhttp.NewServer(api.NewScanEchoHandler(l.Named("api"), store), l.Named("http"),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsEndpoint(cfg.Metrics.Enabled),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *logger.Logger, scheduler *usecase.CycleScheduler, httpServer *xhttp.Server) *server.App {
	return server.New(cfg, l, scheduler, httpServer)
}
