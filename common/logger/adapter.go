package logger

// Adapter bridges libraries that log through a single Log(string) method, such as the DataDog
// tracer.
type Adapter Logger

func (log *Adapter) Log(msg string) {
	if log == nil || log.Logger == nil {
		return
	}
	(*Logger)(log).Info(msg)
}

// Errorf, Warnf and Debugf satisfy the resty.Logger interface.

func (l *Logger) Errorf(format string, v ...any) {
	l.Sugar().Errorf(format, v...)
}

func (l *Logger) Warnf(format string, v ...any) {
	l.Sugar().Warnf(format, v...)
}

func (l *Logger) Debugf(format string, v ...any) {
	l.Sugar().Debugf(format, v...)
}
