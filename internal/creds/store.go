package creds

import (
	"encoding/json"
	"log"
	"os"
)

// storeEntry is one record in the local credentials store.
type storeEntry struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// fromStore reads the local credentials file and looks up the cluster.
// The "{context}:{clusterName}" key takes priority; a bare "{clusterName}"
// key is kept for backward compatibility with older store files.
func (r *Resolver) fromStore(contextName, clusterName string) Credentials {
	data, err := os.ReadFile(r.StorePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not read credentials file %s: %v", r.StorePath, err)
		}
		return Credentials{}
	}

	var store map[string]storeEntry
	if err := json.Unmarshal(data, &store); err != nil {
		log.Printf("Warning: could not parse credentials file %s: %v", r.StorePath, err)
		return Credentials{}
	}

	for _, key := range []string{contextName + ":" + clusterName, clusterName} {
		entry, ok := store[key]
		if !ok {
			continue
		}
		c := Credentials{Username: entry.Username, Password: entry.Password}
		if c.complete() {
			log.Printf("Using local credentials for %s", key)
			return c
		}
	}

	return Credentials{}
}
