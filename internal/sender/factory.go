package sender

import (
	"fmt"
	"strings"

	"statreporter/internal/config"
	"statreporter/internal/logger"
)

// NewSender creates a Sender based on the configuration. It returns a nil
// Sender when publishing is turned off.
func NewSender(cfg *config.Config) (Sender, error) {
	log := logger.WithComponent("sender-factory")

	senderType := strings.ToLower(cfg.SenderType)
	if senderType == "" {
		senderType = "none"
	}

	log.Info().
		Str("sender_type", senderType).
		Msg("Creating sender")

	var (
		s   Sender
		err error
	)
	switch senderType {
	case "none":
		return nil, nil
	case "file":
		s, err = NewFileSender(cfg.File)
	case "kafka":
		s, err = NewKafkaSender(cfg.Kafka, cfg.SOCKSProxy)
	case "redis":
		s, err = NewRedisSender(cfg.Redis, cfg.SOCKSProxy)
	default:
		return nil, fmt.Errorf("unknown sender type: %s (supported: none, file, kafka, redis)", senderType)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
