package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes indented JSON. HTML characters are left unescaped
// so attribute values print as stored.
type JSONFormatter struct{}

// Format writes data followed by a newline.
func (JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
