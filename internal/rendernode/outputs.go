package rendernode

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Frame range, output, denoise and statistics parameter names on the render
// node.
const (
	ParmRangeType = "trange"
	ParmStart     = "f1"
	ParmEnd       = "f2"
	ParmPicture   = "picture"
	ParmRawPic    = "picture_raw"
	ParmDenoise   = "denoise"
	ParmDenoised  = "denoise_picture"
	ParmStats     = "ri_statistics_xmlfilename"
)

// OutputRange returns the frames the node renders. A range type of 0 means
// "current frame only".
func OutputRange(n Node, currentFrame int) (first, last int, err error) {
	rangeType, _ := n.Int(ParmRangeType)
	if rangeType <= 0 {
		return currentFrame, currentFrame, nil
	}
	start, ok := n.Int(ParmStart)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrMissingParm, ParmStart)
	}
	end, ok := n.Int(ParmEnd)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrMissingParm, ParmEnd)
	}
	return start, end, nil
}

// OutputDriver is the node path the farm plugin must cook.
func OutputDriver(n Node) (string, error) {
	base := strings.TrimRight(n.Path(), "/")
	switch n.Network() {
	case NetworkLOP:
		return path.Join(base, "rop_usdrender"), nil
	case NetworkROP:
		return path.Join(base, "ris1"), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, n.Network())
	}
}

// PicturePath returns the evaluated beauty output path.
func PicturePath(n Node) (string, error) {
	picture, ok := n.String(ParmPicture)
	if !ok || strings.TrimSpace(picture) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParm, ParmPicture)
	}
	return picture, nil
}

// RawPicturePath returns the unexpanded output path, still carrying its $F
// frame token. Nodes exported without one fall back to the picture parm.
func RawPicturePath(n Node) (string, error) {
	if raw, ok := n.String(ParmRawPic); ok && strings.TrimSpace(raw) != "" {
		return raw, nil
	}
	return PicturePath(n)
}

// Denoise reports whether the node renders a denoise pass.
func Denoise(n Node) bool {
	v, _ := n.Int(ParmDenoise)
	return v > 0
}

// OutputPaths lists every file path the render writes, so directories can be
// created before the job starts.
func OutputPaths(n Node) ([]string, error) {
	picture, err := PicturePath(n)
	if err != nil {
		return nil, err
	}
	paths := []string{picture}
	if Denoise(n) {
		if denoised, ok := n.String(ParmDenoised); ok && strings.TrimSpace(denoised) != "" {
			paths = append(paths, denoised)
		}
	}
	if stats, ok := StatisticsPath(n); ok {
		paths = append(paths, stats)
	}
	return paths, nil
}

// StatisticsPath returns the RenderMan statistics file. The renderer always
// writes XML, so any other extension the node carries is swapped for .xml.
func StatisticsPath(n Node) (string, bool) {
	stats, ok := n.String(ParmStats)
	stats = strings.TrimSpace(stats)
	if !ok || stats == "" {
		return "", false
	}
	if ext := path.Ext(stats); ext != ".xml" {
		stats = strings.TrimSuffix(stats, ext) + ".xml"
	}
	return stats, true
}

// OutputDirs returns the unique parent directories of OutputPaths.
func OutputDirs(n Node) ([]string, error) {
	paths, err := OutputPaths(n)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var dirs []string
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}
