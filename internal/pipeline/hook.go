package pipeline

import (
	"github.com/sirupsen/logrus"
)

// observerHook forwards every log message to a callback.
type observerHook struct {
	fn func(string)
}

func (h *observerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *observerHook) Fire(entry *logrus.Entry) error {
	h.fn(entry.Message)
	return nil
}
