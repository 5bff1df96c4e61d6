package main

import (
	"flag"
	"time"

	httpadapter "geohex/internal/adapter/http"
	"geohex/internal/adapter/metrics/inmemory"
	"geohex/internal/adapter/overpass"
	"geohex/internal/adapter/repo/filestore"
	gormrepo "geohex/internal/adapter/repo/gorm"
	"geohex/internal/app/auth"
	"geohex/internal/app/classify"
	"geohex/internal/app/coast"
	"geohex/internal/app/drive"
	"geohex/internal/app/history"
	"geohex/internal/app/mine"
	"geohex/internal/app/ports"
	"geohex/internal/config"
	"geohex/internal/logs"
	"geohex/internal/security"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"
)

type repos struct {
	users    ports.UserRepository
	cache    ports.ClassificationCacheRepository
	coast    ports.CoastalBufferRepository
	events   ports.MiningEventRepository
	treasury ports.TreasuryRepository
	tx       ports.TxManager
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log := logs.New(cfg.Log)
	defer log.Sync()

	r := buildRepos(cfg, log)

	classifyUC := classify.UseCase{
		Features: overpass.New(cfg.Overpass.Endpoints, log.Named("overpass")),
		Cache:    r.cache,
		Coast:    coast.Buffer{Repo: r.coast, Log: log.Named("coast")},
		Log:      log.Named("classify"),
	}
	tokens := security.TokenManager{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	recorder := inmemory.NewRecorder()

	h := httpadapter.Handler{
		AuthUC: auth.UseCase{Users: r.users, Tx: r.tx, Tokens: tokens},
		ClassifyUC: classifyUC,
		MineUC: mine.UseCase{
			Tx:       r.tx,
			Users:    r.users,
			Events:   r.events,
			Treasury: r.treasury,
			Coast:    coast.Buffer{Repo: r.coast, Log: log.Named("coast")},
			Metrics:  recorder,
			Now:      time.Now,
			Log:      log.Named("mine"),
		},
		DriveUC: drive.UseCase{
			Tx:         r.tx,
			Users:      r.users,
			Events:     r.events,
			Treasury:   r.treasury,
			Classifier: classifyUC,
			Metrics:    recorder,
			Now:        time.Now,
			Log:        log.Named("drive"),
		},
		HistoryUC: history.UseCase{Events: r.events},
		Tokens:    tokens,
		Stats:     recorder,
		Log:       log.Named("http"),
	}

	s := server.Default(server.WithHostPorts(cfg.Addr))
	h.RegisterRoutes(s)

	log.Info("server listening", zap.String("addr", cfg.Addr))
	s.Spin()
}

// buildRepos selects the persistence backend: postgres when a DSN is
// configured, the file-backed store otherwise.
func buildRepos(cfg config.Config, log *zap.Logger) repos {
	if cfg.DatabaseDSN != "" {
		db, err := gormrepo.OpenPostgres(cfg.DatabaseDSN)
		if err != nil {
			log.Fatal("open postgres", zap.Error(err))
		}
		if err := gormrepo.AutoMigrate(db); err != nil {
			log.Fatal("migrate schema", zap.Error(err))
		}
		return repos{
			users:    gormrepo.NewUserRepo(db),
			cache:    gormrepo.NewCacheRepo(db),
			coast:    gormrepo.NewBufferRepo(db),
			events:   gormrepo.NewEventRepo(db),
			treasury: gormrepo.NewTreasuryRepo(db),
			tx:       gormrepo.NewTxManager(db),
		}
	}

	store, err := filestore.Open(cfg.DataDir, log.Named("filestore"))
	if err != nil {
		log.Fatal("open filestore", zap.Error(err))
	}
	return repos{
		users:    filestore.NewUserRepo(store),
		cache:    filestore.NewCacheRepo(store),
		coast:    filestore.NewBufferRepo(store),
		events:   filestore.NewEventRepo(store),
		treasury: filestore.NewTreasuryRepo(store),
		tx:       filestore.NewTxManager(store),
	}
}
