package log

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// New returns the same logger all the time. Paths are only honored on the
// first call; stderr is always an output.
func New(paths ...string) *zap.SugaredLogger {
	once.Do(func() {
		cfg := zap.NewDevelopmentConfig()
		cfg.Encoding = "json"
		cfg.OutputPaths = append([]string{"stderr"}, paths...)
		base, err := cfg.Build()
		if err != nil {
			panic(err)
		}

		logger = base.Sugar().Named("finite")
	})

	return logger
}
