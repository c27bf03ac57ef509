// Package identity supplies the per-session participant id and the persisted
// display name. The id is fresh for every invocation; the display name
// survives restarts under the user config dir.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultName is used when no display name has ever been stored.
const DefaultName = "Anonimac"

const nameFile = "username"

// Identity is one participant's session identity.
type Identity struct {
	ID       string
	Username string
}

// Load builds the session identity. A non-empty override wins over the
// stored name and is persisted for the next run.
func Load(override string) (Identity, error) {
	name := strings.TrimSpace(override)
	if name != "" {
		if err := storeName(name); err != nil {
			return Identity{}, fmt.Errorf("store display name: %w", err)
		}
	} else {
		stored, err := loadName()
		if err != nil {
			return Identity{}, err
		}
		name = stored
	}
	if name == "" {
		name = DefaultName
	}

	return Identity{
		ID:       uuid.NewString(),
		Username: name,
	}, nil
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "pricaona"), nil
}

func loadName() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(dir, nameFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read display name: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func storeName(name string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, nameFile), []byte(name+"\n"), 0o644)
}
