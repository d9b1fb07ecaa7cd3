package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blogport/app/repositories"
)

// ErrCancelled is returned when the operator declines a confirmation.
var ErrCancelled = errors.New("operation cancelled")

// Admin runs maintenance commands against the store at Path. Destructive
// commands ask for confirmation on In unless Yes is set.
type Admin struct {
	Path    string
	Options repositories.Options
	In      io.Reader
	Out     io.Writer
	Yes     bool
}

func (a *Admin) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *Admin) confirm(prompt string) bool {
	if a.Yes {
		return true
	}
	a.printf("%s [y/N] ", prompt)
	scanner := bufio.NewScanner(a.In)
	if !scanner.Scan() {
		return false
	}
	response := strings.TrimSpace(scanner.Text())
	return response == "y" || response == "Y"
}

func (a *Admin) exists() bool {
	_, err := os.Stat(a.Path)
	return err == nil
}

// Init creates a new empty store.
func (a *Admin) Init() error {
	if a.exists() {
		return fmt.Errorf("store already exists at %s; use 'clean' first if you want to reinitialize", a.Path)
	}

	if err := os.MkdirAll(a.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	store, err := repositories.Open(a.Path, a.Options)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer store.Close()

	a.printf("Store initialized at %s\n", a.Path)
	return nil
}

// Clean removes the store.
func (a *Admin) Clean() error {
	if !a.exists() {
		a.printf("Store is already clean (does not exist)\n")
		return nil
	}

	if !a.confirm("Are you sure you want to clean the store? This cannot be undone.") {
		return ErrCancelled
	}

	if err := os.RemoveAll(a.Path); err != nil {
		return fmt.Errorf("failed to clean store: %w", err)
	}
	a.printf("Store cleaned successfully\n")
	return nil
}

// Backup writes a full backup of the store into dir and returns the file
// it wrote.
func (a *Admin) Backup(dir string) (string, error) {
	if !a.exists() {
		return "", fmt.Errorf("no store exists at %s to back up", a.Path)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	store, err := repositories.Open(a.Path, a.Options)
	if err != nil {
		return "", fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return "", fmt.Errorf("failed to back up store: %w", err)
	}

	a.printf("Store backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// Restore replaces the store with the contents of backupFile.
func (a *Admin) Restore(backupFile string) (err error) {
	fi, err := os.Stat(backupFile)
	if err != nil {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	if a.exists() {
		if !a.confirm("Existing store found. Do you want to replace it?") {
			return ErrCancelled
		}
		if err := os.RemoveAll(a.Path); err != nil {
			return fmt.Errorf("failed to remove existing store: %w", err)
		}
	}

	if err := os.MkdirAll(a.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	store, err := repositories.Open(a.Path, a.Options)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	if err := store.Restore(f); err != nil {
		return fmt.Errorf("failed to restore store: %w", err)
	}

	a.printf("Store restored successfully\n")
	return nil
}
