package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// GenerateTraceId returns a fresh trace id for a request.
func GenerateTraceId() string {
	return uuid.New().String()
}

func logEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	default:
		entry.Info(message)
	}
}

// LogMessage logs a message without request context.
func LogMessage(level, message string) {
	logEntry(log.WithFields(log.Fields{}), level, message)
}

// LogMessageWithFields logs a message enriched with the request trace id.
func LogMessageWithFields(ctx *gin.Context, level, message string) {
	traceId, _ := ctx.Value(TraceIdKey.String()).(string)

	entry := log.WithFields(log.Fields{
		"traceId": traceId,
	})

	logEntry(entry, level, message)
}

// LogMessageWithFieldsAndError logs a message with the trace id and the causing error.
func LogMessageWithFieldsAndError(ctx *gin.Context, level, message string, err error) {
	traceId, _ := ctx.Value(TraceIdKey.String()).(string)

	entry := log.WithFields(log.Fields{
		"traceId": traceId,
		"error":   err,
	})

	logEntry(entry, level, message)
}
