package app

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer resolves through the global provider installed by the telemetry
// package at start-up.
var tracer trace.Tracer = otel.Tracer("reminder_notifier/internal/app")
