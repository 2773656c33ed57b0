package log

import "log/slog"

func WizardID[T ~string](id T) slog.Attr {
	return slog.String("wizard_id", string(id))
}

func StepID[T ~int](id T) slog.Attr {
	return slog.Int("step_id", int(id))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
