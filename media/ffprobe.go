package media

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/vansante/go-ffprobe.v2"
)

// FFProbe reads container metadata documents with the ffprobe binary.
type FFProbe struct {
	Command string
}

// NewFFProbe points go-ffprobe at command. The binary path is process-wide
// in that library, so one FFProbe is expected per process.
func NewFFProbe(command string) *FFProbe {
	if command == "" {
		command = "ffprobe"
	}
	ffprobe.SetFFProbeBinPath(command)
	return &FFProbe{Command: command}
}

// Open runs ffprobe against path and returns its document.
func (p *FFProbe) Open(ctx context.Context, path string) (Tags, error) {
	data, err := ffprobe.ProbeURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return newProbeDocument(data)
}

func newProbeDocument(data *ffprobe.ProbeData) (*probeDocument, error) {
	if data == nil || (data.Format == nil && len(data.Streams) == 0) {
		return nil, fmt.Errorf("ffprobe found no container")
	}
	return &probeDocument{probe: data}, nil
}

type probeDocument struct {
	probe *ffprobe.ProbeData
}

// Field looks the name up in the format tags, then in each stream's tags.
// Keys match case-insensitively.
func (d *probeDocument) Field(name string) (string, bool) {
	if f := d.probe.Format; f != nil {
		if v, ok := lookupTag(f.TagList, name); ok {
			return v, true
		}
	}
	for _, s := range d.probe.Streams {
		if v, ok := lookupTag(s.TagList, name); ok {
			return v, true
		}
	}
	return "", false
}

// Lines flattens the document into "- key: value" lines with sorted keys.
// ISO 6709 location tags are also expanded into "GPS latitude" and
// "GPS longitude" lines.
func (d *probeDocument) Lines() []string {
	lines := []string{"Metadata:"}
	if f := d.probe.Format; f != nil {
		if f.FormatName != "" {
			lines = append(lines, "- Format: "+f.FormatName)
		}
		if f.DurationSeconds > 0 {
			lines = append(lines, "- Duration: "+strconv.FormatFloat(f.DurationSeconds, 'f', -1, 64))
		}
		lines = appendTagLines(lines, "- ", f.TagList)
	}

	for _, s := range d.probe.Streams {
		lines = append(lines, fmt.Sprintf("Stream #%d (%s):", s.Index, s.CodecType))
		if s.CodecName != "" {
			lines = append(lines, "- Codec: "+s.CodecName)
		}
		lines = appendTagLines(lines, "- ", s.TagList)
	}
	return lines
}

var locationTags = map[string]bool{
	"location":                             true,
	"location-eng":                         true,
	"com.apple.quicktime.location.iso6709": true,
}

func appendTagLines(lines []string, prefix string, tags ffprobe.Tags) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := tagValue(tags[k])
		lines = append(lines, prefix+k+": "+v)
		if locationTags[strings.ToLower(k)] {
			if lat, lon, ok := parseISO6709(v); ok {
				lines = append(lines, prefix+"GPS latitude: "+lat, prefix+"GPS longitude: "+lon)
			}
		}
	}
	return lines
}

func lookupTag(tags ffprobe.Tags, name string) (string, bool) {
	if v, ok := tags[name]; ok {
		return tagValue(v), true
	}
	for k, v := range tags {
		if strings.EqualFold(k, name) {
			return tagValue(v), true
		}
	}
	return "", false
}

func tagValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Matches "+37.7749-122.4194+000.000/" and "+37.7749-122.4194/".
var iso6709 = regexp.MustCompile(`^([+-]\d+(?:\.\d+)?)([+-]\d+(?:\.\d+)?)`)

func parseISO6709(s string) (lat, lon string, ok bool) {
	m := iso6709.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", false
	}
	la, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", "", false
	}
	lo, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return "", "", false
	}
	return strconv.FormatFloat(la, 'f', -1, 64), strconv.FormatFloat(lo, 'f', -1, 64), true
}
