package chunked

import (
	"fmt"
	"path/filepath"
	"time"

	"rfr/internal/schema"
)

// DirPath returns the recording-relative directory a chunk whose
// interval's base time is secs belongs under: "<YYYY>-<MM>/<DD>-<HH>",
// in UTC, zero-padded.
func DirPath(root string, secs uint64) string {
	t := time.Unix(int64(secs), 0).UTC()
	return filepath.Join(root, t.Format("2006-01"), t.Format("02-15"))
}

// ChunkPath returns the full path of the chunk file for the given
// interval: "<root>/<YYYY>-<MM>/<DD>-<HH>/chunk-<mm>-<ss>-<micros>.rfr".
// The interval's StartTime microsecond offset is folded into the name
// so that sub-second chunk periods (250ms/500ms) produce distinct
// paths for every interval within the same wall-clock second, rather
// than colliding on the shared "mm-ss" prefix.
func ChunkPath(root string, interval schema.ChunkInterval) string {
	t := time.Unix(int64(interval.BaseTime.Secs), 0).UTC()
	dir := DirPath(root, interval.BaseTime.Secs)
	return filepath.Join(dir, fmt.Sprintf("chunk-%s-%06d.rfr", t.Format("04-05"), interval.StartTime.Micros))
}

// MetaPath returns the recording-wide meta file path.
func MetaPath(root string) string { return filepath.Join(root, "meta.rfr") }

// CallsitesPath returns the recording-wide callsites file path.
func CallsitesPath(root string) string { return filepath.Join(root, "callsites.rfr") }
