package service

import "time"

const (
	DefaultSessionTTL = 30 * time.Minute // sesión inactiva expira
	MaxSessionTTL     = 24 * time.Hour

	DefaultRateLimitCapacity = 120 // requests por ventana y cliente
	DefaultRateLimitRefill   = time.Minute
)

const (
	MaxProjectionPeriods = 600  // 50 años de aportes mensuales
	ProjectionTolerance  = 0.01 // saldo restante que cuenta como meta cumplida
)
