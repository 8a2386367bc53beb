package model

import "time"

const DefaultPingTimeout = 2 * time.Second
const DefaultShutdownTimeout = 10 * time.Second
const DefaultTokenTTL = 24 * time.Hour
const DefaultBcryptCost = 10
const MaxNameLength = 100

const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "
	ContentTypeJSON     = "application/json"
)

type ContextKey string

const (
	KeyContextLogger ContextKey = "logger"
	KeyContextClaims ContextKey = "claims"
)

const KeyLoggerError = "error"
