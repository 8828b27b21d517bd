package mimeo

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for duplication events.
var (
	SignalCloneStart          = capitan.NewSignal("mimeo.clone.start", "Clone operation beginning")
	SignalCloneComplete       = capitan.NewSignal("mimeo.clone.complete", "Clone operation finished")
	SignalFlattenStart        = capitan.NewSignal("mimeo.flatten.start", "Flatten operation beginning")
	SignalFlattenComplete     = capitan.NewSignal("mimeo.flatten.complete", "Flatten operation finished")
	SignalExportStart         = capitan.NewSignal("mimeo.export.start", "Export operation beginning")
	SignalExportComplete      = capitan.NewSignal("mimeo.export.complete", "Export operation finished")
	SignalFingerprintStart    = capitan.NewSignal("mimeo.fingerprint.start", "Fingerprint operation beginning")
	SignalFingerprintComplete = capitan.NewSignal("mimeo.fingerprint.complete", "Fingerprint operation finished")
)

// Keys for typed event data.
var (
	KeyMode       = capitan.NewStringKey("mode")
	KeyHint       = capitan.NewStringKey("hint")
	KeyTypeName   = capitan.NewStringKey("type_name")
	KeyTargetType = capitan.NewStringKey("target_type")
	KeyNodeCount  = capitan.NewIntKey("node_count")
	KeyDigest     = capitan.NewStringKey("digest")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
)

// emitCloneStart emits an event when a clone-family operation begins.
// The mode field separates clone, mutableClone, and readonlyClone.
func emitCloneStart(ctx context.Context, mode Capability, typeName string, hint Hint) {
	capitan.Emit(ctx, SignalCloneStart,
		KeyMode.Field(string(mode)),
		KeyTypeName.Field(typeName),
		KeyHint.Field(string(hint)),
	)
}

// emitCloneComplete emits an event when a clone-family operation finishes.
func emitCloneComplete(ctx context.Context, mode Capability, typeName string, hint Hint, nodes int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyMode.Field(string(mode)),
		KeyTypeName.Field(typeName),
		KeyHint.Field(string(hint)),
		KeyNodeCount.Field(nodes),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCloneComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalCloneComplete, fields...)
	}
}

// emitFlattenStart emits an event when flatten begins.
func emitFlattenStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalFlattenStart,
		KeyTypeName.Field(typeName),
	)
}

// emitFlattenComplete emits an event when flatten finishes.
func emitFlattenComplete(ctx context.Context, typeName string, nodes int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyNodeCount.Field(nodes),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalFlattenComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalFlattenComplete, fields...)
	}
}

// emitExportStart emits an event when export begins.
func emitExportStart(ctx context.Context, typeName, targetType string) {
	capitan.Emit(ctx, SignalExportStart,
		KeyTypeName.Field(typeName),
		KeyTargetType.Field(targetType),
	)
}

// emitExportComplete emits an event when export finishes.
func emitExportComplete(ctx context.Context, typeName, targetType string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyTargetType.Field(targetType),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalExportComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalExportComplete, fields...)
	}
}

// emitFingerprintStart emits an event when fingerprinting begins.
func emitFingerprintStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalFingerprintStart,
		KeyTypeName.Field(typeName),
	)
}

// emitFingerprintComplete emits an event when fingerprinting finishes.
func emitFingerprintComplete(ctx context.Context, typeName, digest string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDigest.Field(digest),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalFingerprintComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalFingerprintComplete, fields...)
	}
}
