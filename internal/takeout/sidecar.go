package takeout

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// loadSidecar reads the Takeout JSON sidecar for a media file, named
// <file>.json next to it. A missing or malformed sidecar returns
// (nil, false); the file is still imported, just without metadata.
func loadSidecar(file string) (map[string]any, bool) {
	data, err := os.ReadFile(file + ".json")
	if err != nil {
		return nil, false
	}
	var sidecar map[string]any
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return nil, false
	}
	return sidecar, true
}

// takenTime resolves the capture time used for the filename prefix:
// the sidecar's photoTakenTime, then its creationTime, then the file's
// modification time.
func (i *Importer) takenTime(file string, sidecar map[string]any) time.Time {
	for _, key := range []string{"photoTakenTime", "creationTime"} {
		if ts, ok := sidecarTimestamp(sidecar, key); ok {
			return ts
		}
	}
	if info, err := os.Stat(file); err == nil {
		return info.ModTime()
	}
	return time.Now()
}

// sidecarTimestamp digs the unix-seconds timestamp out of a Takeout
// time block, e.g. {"photoTakenTime": {"timestamp": "1600000000"}}.
// Takeout writes the value as a string; a numeric value is accepted too.
func sidecarTimestamp(sidecar map[string]any, key string) (time.Time, bool) {
	block, ok := sidecar[key].(map[string]any)
	if !ok {
		return time.Time{}, false
	}
	switch v := block["timestamp"].(type) {
	case string:
		secs, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(secs, 0), true
	case float64:
		return time.Unix(int64(v), 0), true
	}
	return time.Time{}, false
}
