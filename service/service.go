package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Roberadesissai/workout-tracker-sub000/cockroach"
	"github.com/Roberadesissai/workout-tracker-sub000/minio"
	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/go-kit/log"
)

type Config struct {
	Cockroach *cockroach.Cockroach
	Minio     *minio.Minio
	Broker    *realtime.Broker
	Logger    log.Logger

	BaseCtx           context.Context
	BackgroundTimeout time.Duration

	TokenKey string
	TokenTTL time.Duration

	// MediaURLPrefix is prepended to bucket object paths to build
	// publicly reachable URLs.
	MediaURLPrefix string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	// PushContact goes in the VAPID subscriber claim, usually a
	// mailto: address.
	PushContact string
}

type Service struct {
	Cockroach *cockroach.Cockroach
	Minio     *minio.Minio
	Broker    *realtime.Broker
	Logger    log.Logger

	baseCtx           context.Context
	backgroundTimeout time.Duration
	wg                sync.WaitGroup
	errs              chan error

	tokenKey        string
	tokenTTL        time.Duration
	mediaURLPrefix  string
	vapidPublicKey  string
	vapidPrivateKey string
	pushContact     string
}

func New(cfg *Config) *Service {
	return &Service{
		Cockroach: cfg.Cockroach,
		Minio:     cfg.Minio,
		Broker:    cfg.Broker,
		Logger:    cfg.Logger,

		baseCtx:           cfg.BaseCtx,
		backgroundTimeout: cfg.BackgroundTimeout,
		errs:              make(chan error, 1),

		tokenKey:        cfg.TokenKey,
		tokenTTL:        cfg.TokenTTL,
		mediaURLPrefix:  cfg.MediaURLPrefix,
		vapidPublicKey:  cfg.VAPIDPublicKey,
		vapidPrivateKey: cfg.VAPIDPrivateKey,
		pushContact:     cfg.PushContact,
	}
}

func (svc *Service) Errs() <-chan error {
	return svc.errs
}

func (svc *Service) Close() error {
	svc.wg.Wait()
	close(svc.errs)
	return nil
}

func (svc *Service) background(fn func(ctx context.Context) error) {
	svc.wg.Go(func() {
		defer func() {
			if rcv := recover(); rcv != nil {
				select {
				case svc.errs <- fmt.Errorf("service background panic: %v", rcv):
				default:
				}
			}
		}()

		ctx, cancel := context.WithTimeout(svc.baseCtx, svc.backgroundTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			select {
			case svc.errs <- fmt.Errorf("service background error: %w", err):
			default:
			}
		}
	})
}
