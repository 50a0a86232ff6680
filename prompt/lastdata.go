// ort: Open Router CLI
// https://github.com/grahamking/ort-go
//
// MIT License
// Copyright (c) 2025 Graham King

package prompt

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/grahamking/ort-go/errs"
	"github.com/grahamking/ort-go/paths"
)

// TmuxPaneID extracts the numeric suffix of $TMUX_PANE (e.g. "%4" -> 4),
// or 0 if unset or unparseable.
func TmuxPaneID() int {
	v := os.Getenv("TMUX_PANE")
	if len(v) < 2 || v[0] != '%' {
		return 0
	}
	n := 0
	for _, c := range v[1:] {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// lastFilePath is $XDG_CACHE_HOME/ort/last-<pane>.json for the current
// tmux pane (or pane 0 outside tmux).
func lastFilePath() (string, error) {
	dir, err := paths.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, lastFilename(TmuxPaneID())), nil
}

func lastFilename(pane int) string {
	return "last-" + itoa(pane) + ".json"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// LoadLast reads and parses the current pane's last conversation file.
func LoadLast() (LastData, error) {
	name, err := lastFilePath()
	if err != nil {
		return LastData{}, err
	}
	return loadLastFrom(name)
}

// LoadMostRecentLast falls back to the most recently modified
// last-*.json file in the cache directory when the current pane has none
// yet (e.g. a "--continue" run outside the tmux pane that created it).
func LoadMostRecentLast() (LastData, error) {
	dir, err := paths.CacheDir()
	if err != nil {
		return LastData{}, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return LastData{}, errs.Wrap(errs.HistoryReadFailed, "read cache dir", err)
	}

	var best string
	var bestMod int64
	for _, e := range entries {
		if e.IsDir() || len(e.Name()) < 5 || e.Name()[:5] != "last-" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().Unix(); best == "" || mod > bestMod {
			best = e.Name()
			bestMod = mod
		}
	}
	if best == "" {
		return LastData{}, errs.New(errs.HistoryMissing, "no previous conversation found")
	}
	return loadLastFrom(filepath.Join(dir, best))
}

func loadLastFrom(name string) (LastData, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return LastData{}, errs.New(errs.HistoryMissing, "no last conversation, cannot continue")
		}
		return LastData{}, errs.Wrap(errs.HistoryReadFailed, name, err)
	}
	var data LastData
	if err := json.Unmarshal(b, &data); err != nil {
		return LastData{}, errs.Wrap(errs.HistoryParseFailed, name, err)
	}
	return data, nil
}
