package interceptors

import (
	"go.uber.org/zap"

	"github.com/junioryono/saber"
)

// Logging returns an interceptor that reports failed resolutions and failed
// Provide calls to logger at warn level. Successful resolutions are logged at
// debug level. A nil logger disables logging.
func Logging(logger *zap.Logger) saber.ProviderInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	return saber.InterceptorFunc(func(chain saber.Chain, key saber.Key) (saber.Provider, error) {
		inj := chain.Injector()
		p, err := chain.Proceed(key)
		if err != nil {
			logger.Warn("resolution failed",
				zap.Stringer("key", key),
				zap.String("injector", inj.ID()),
				zap.Bool("not_found", saber.IsNotFound(err)),
				zap.Error(err))
			return nil, err
		}

		if ce := logger.Check(zap.DebugLevel, "resolved"); ce != nil {
			ce.Write(zap.Stringer("key", key), zap.String("injector", inj.ID()))
		}
		return &loggingProvider{next: p, key: key, injector: inj.ID(), logger: logger}, nil
	})
}

type loggingProvider struct {
	next     saber.Provider
	key      saber.Key
	injector string
	logger   *zap.Logger
}

func (p *loggingProvider) Provide() (any, error) {
	v, err := p.next.Provide()
	if err != nil {
		p.logger.Warn("provider failed",
			zap.Stringer("key", p.key),
			zap.String("injector", p.injector),
			zap.Error(err))
	}
	return v, err
}
