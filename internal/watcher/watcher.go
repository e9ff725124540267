// Package watcher notices edits to the local credentials store so an
// operator fixing credentials after a failed connect can see the driver
// picked them up before retrying.
package watcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CredentialsWatcher watches the credentials store file. Resolution re-reads
// the file on every connect, so the watcher only reports; it never caches.
type CredentialsWatcher struct {
	path    string
	watcher *fsnotify.Watcher

	stopChan chan struct{}
	doneChan chan struct{}
}

// New creates a watcher for the credentials file. The parent directory is
// watched rather than the file itself: the store commonly does not exist yet
// and editors replace it wholesale on save.
func New(path string) (*CredentialsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &CredentialsWatcher{
		path:     path,
		watcher:  watcher,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// Start begins watching in the background.
func (cw *CredentialsWatcher) Start() {
	go cw.watchLoop()
}

// Stop stops the watcher and waits for the loop to exit.
func (cw *CredentialsWatcher) Stop() {
	close(cw.stopChan)
	cw.watcher.Close()
	<-cw.doneChan
}

func (cw *CredentialsWatcher) watchLoop() {
	defer close(cw.doneChan)

	var debounceTimer *time.Timer
	var debounceMu sync.Mutex

	for {
		select {
		case <-cw.stopChan:
			debounceMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceMu.Unlock()
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filepath.Clean(cw.path) {
				continue
			}

			// Write, create, chmod, or rename all count: editors like vim
			// use atomic saves (write temp, rename over the target)
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Rename) != 0 {
				debounceMu.Lock()
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(500*time.Millisecond, func() {
					log.Printf("Credentials store changed: %s (used on next connect)", cw.path)
				})
				debounceMu.Unlock()
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Credentials watcher error: %v", err)
		}
	}
}
