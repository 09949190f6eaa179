package publish

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ErrNoFrameToken is returned when an output path has no $F frame token.
var ErrNoFrameToken = errors.New("publish: no $F frame token in path")

var frameToken = regexp.MustCompile(`[$][fF](\d)`)

// FileName turns a raw Houdini output path such as
// "/renders/shot010_beauty.$F4.exr" into the publish code
// "shot010_beauty.%04d.exr".
func FileName(rawPath string) (string, error) {
	loc := frameToken.FindStringSubmatchIndex(rawPath)
	if loc == nil {
		return "", fmt.Errorf("%w: %q", ErrNoFrameToken, rawPath)
	}
	token := rawPath[loc[0]:loc[1]]
	padding := rawPath[loc[2]:loc[3]]
	replaced := strings.ReplaceAll(rawPath, token, "%0"+padding+"d")
	return path.Base(strings.ReplaceAll(replaced, `\`, "/")), nil
}
