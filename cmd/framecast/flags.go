package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/kingrea/framecast/internal/deadline"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet("framecast "+name, flag.ContinueOnError)
}

// keyValueFlag collects repeatable key=value flags in the order given. A
// repeated key replaces the earlier value in place.
type keyValueFlag []deadline.KeyValue

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(*kv))
	for _, p := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", p.Key, p.Value))
	}
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return fmt.Errorf("key is empty in %q", value)
	}
	for i := range *kv {
		if (*kv)[i].Key == key {
			(*kv)[i].Value = parts[1]
			return nil
		}
	}
	*kv = append(*kv, deadline.KeyValue{Key: key, Value: parts[1]})
	return nil
}

// setFlags reports which flags were given explicitly.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}
