// Package content manages the flat quote/joke/fact lists. Each list is one
// JSON array file, seeded with defaults when missing, loaded once at startup.
// Appends re-read then rewrite the whole file; there is no edit or delete.
package content

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultQuotes seed a fresh quotes file.
var DefaultQuotes = []string{
	"The only way to do great work is to love what you do. - Steve Jobs",
	"Innovation distinguishes between a leader and a follower. - Steve Jobs",
}

// DefaultJokes seed a fresh jokes file.
var DefaultJokes = []string{
	"Why don't scientists trust atoms? Because they make up everything!",
	"Why did the scarecrow win an award? Because he was outstanding in his field!",
}

// DefaultFacts seed a fresh facts file.
var DefaultFacts = []string{
	"Honey never spoils. Archaeologists have found pots of honey in ancient Egyptian tombs that are over 3,000 years old and still perfectly edible.",
	"Octopuses have three hearts and blue blood.",
}

// List is one ordered sequence of free-text entries backed by a file.
// Lists are never empty: a missing or unreadable file yields the defaults.
type List struct {
	mu    sync.Mutex
	path  string
	items []string
}

// Registry bundles the three content lists.
type Registry struct {
	Quotes *List
	Jokes  *List
	Facts  *List
}

// LoadRegistry loads all three lists, creating files with defaults as needed.
func LoadRegistry(quotesPath, jokesPath, factsPath string, log zerolog.Logger) *Registry {
	return &Registry{
		Quotes: Load(quotesPath, DefaultQuotes, log),
		Jokes:  Load(jokesPath, DefaultJokes, log),
		Facts:  Load(factsPath, DefaultFacts, log),
	}
}

// Load reads the list file, creating it with defaults if it does not exist.
// Read or parse failures fall back to the defaults without crashing.
func Load(path string, defaults []string, log zerolog.Logger) *List {
	l := &List{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		l.items = append([]string(nil), defaults...)
		if err := writeList(path, l.items); err != nil {
			log.Error().Err(err).Str("file", path).Msg("seeding content file failed")
		}
	case err != nil:
		log.Error().Err(err).Str("file", path).Msg("reading content file failed, using defaults")
		l.items = append([]string(nil), defaults...)
	default:
		if err := json.Unmarshal(data, &l.items); err != nil || len(l.items) == 0 {
			log.Error().Err(err).Str("file", path).Msg("content file unusable, using defaults")
			l.items = append([]string(nil), defaults...)
		}
	}
	return l
}

// Pick returns a uniformly random entry. Lists are seeded on load, so they
// are never empty through normal operation.
func (l *List) Pick() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items[rand.Intn(len(l.items))]
}

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Append adds an entry, re-reading the file first so entries added by hand
// between startup and now are not clobbered, then rewriting it whole.
// Authorization is the caller's problem; the registry has none.
func (l *List) Append(item string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := l.items
	if data, err := os.ReadFile(l.path); err == nil {
		var onDisk []string
		if err := json.Unmarshal(data, &onDisk); err == nil {
			items = onDisk
		}
	}

	items = append(items, item)
	if err := writeList(l.path, items); err != nil {
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	l.items = items
	return nil
}

func writeList(path string, items []string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
