package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const (
	colorRed         = 31
	colorGreen       = 32
	colorYellow      = 33
	colorBlue        = 36
	colorGray        = 37
	colorLightGreen  = 92
	colorLightYellow = 93
	colorCyan        = 96
)

// RoomFormatter renders entries as colored key=value pairs with sorted fields.
type RoomFormatter struct {
	// NoColor drops ANSI escapes, for log files and tests.
	NoColor bool
}

func (f *RoomFormatter) Format(entry *log.Entry) ([]byte, error) {
	buf := &bytes.Buffer{}

	levelColor := colorBlue
	switch entry.Level {
	case log.DebugLevel, log.TraceLevel:
		levelColor = colorGray
	case log.WarnLevel:
		levelColor = colorYellow
	case log.ErrorLevel, log.FatalLevel, log.PanicLevel:
		levelColor = colorRed
	}

	f.pair(buf, "level", strings.ToUpper(entry.Level.String())[:4], levelColor)
	f.pair(buf, "ts", entry.Time.Format("2006-01-02 15:04:05.000"), colorLightYellow)
	if entry.HasCaller() {
		f.pair(buf, "source", fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line), colorLightYellow)
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		val := entry.Data[k]
		if err, ok := val.(error); ok {
			val = err.Error()
		}
		m, err := json.Marshal(val)
		if err != nil || len(m) == 0 {
			continue
		}
		s := string(m)
		valueColor := colorCyan
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			valueColor = colorGreen
		} else if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
			valueColor = colorLightYellow
		}
		f.pair(buf, k, s, valueColor)
	}
	f.pair(buf, "msg", strconv.Quote(entry.Message), colorLightGreen)

	out := strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(strings.TrimPrefix(buf.String(), " "))
	return []byte(out + "\n"), nil
}

func (f *RoomFormatter) pair(buf *bytes.Buffer, key, value string, valueColor int) {
	if f.NoColor {
		fmt.Fprintf(buf, " %s=%s", key, value)
		return
	}
	fmt.Fprintf(buf, " \x1b[%dm%s\x1b[0m=\x1b[%dm%s\x1b[0m", colorCyan, key, valueColor, value)
}

// SetupLogging applies the formatter and level to the standard logrus logger.
func SetupLogging(level int) {
	log.SetFormatter(&RoomFormatter{})
	log.SetLevel(log.Level(level))
}
