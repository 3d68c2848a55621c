package mdx

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
)

// EncodePlantUML produces the text encoding PlantUML servers accept in
// /svg/<encoded> URLs: raw deflate, then PlantUML's base64 alphabet.
func EncodePlantUML(source string) (string, error) {
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(zw, source); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return encode64(buf.Bytes()), nil
}

func encode64(data []byte) string {
	var out bytes.Buffer
	for i := 0; i < len(data); i += 3 {
		var b1, b2, b3 byte
		b1 = data[i]
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}
		out.WriteByte(encode6bit(b1 >> 2))
		out.WriteByte(encode6bit(((b1 & 0x3) << 4) | (b2 >> 4)))
		out.WriteByte(encode6bit(((b2 & 0xF) << 2) | (b3 >> 6)))
		out.WriteByte(encode6bit(b3 & 0x3F))
	}
	return out.String()
}

func encode6bit(b byte) byte {
	switch {
	case b < 10:
		return '0' + b
	case b < 36:
		return 'A' + b - 10
	case b < 62:
		return 'a' + b - 36
	case b == 62:
		return '-'
	case b == 63:
		return '_'
	}
	return '?'
}

func writePlantUML(w io.Writer, server, source, alt string) error {
	encoded, err := EncodePlantUML(source)
	if err != nil {
		return fmt.Errorf("encode plantuml: %w", err)
	}
	_, err = fmt.Fprintf(w, `<figure class="plantuml"><img src="%s/svg/%s" alt="%s" loading="lazy"></figure>`,
		esc(server), encoded, esc(alt))
	return err
}
