// Command inspect dumps club-hub records from a Badger store as a
// table, for operators poking at a live or copied data directory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data", "Path to badger DB")
	prefix := flag.String("prefix", "club:", "Prefix to scan (club:, actor:, clubmsg:, gamemsg:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				table.Append([]string{key, kindOf(key), summarize(v)})
				return nil
			})
			if err != nil {
				fmt.Printf("Error reading key %s: %v\n", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Scan failed: ", err)
	}

	table.Render()
}

func openDB(path string) (*badger.DB, error) {
	// BypassLockGuard allows opening while the server holds the lock.
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.ERROR)
	return badger.Open(opts)
}

func kindOf(key string) string {
	switch {
	case strings.HasPrefix(key, "club:"):
		return "CLUB"
	case strings.HasPrefix(key, "actor:user:"):
		return "USER"
	case strings.HasPrefix(key, "actor:organizer:"):
		return "ORGANIZER"
	case strings.HasPrefix(key, "clubmsg:"):
		return "CLUB MSG"
	case strings.HasPrefix(key, "gamemsg:"):
		return "GAME MSG"
	default:
		return "?"
	}
}

// summarize renders the JSON record on one line, truncated so a long
// chat log stays readable.
func summarize(v []byte) string {
	var generic map[string]any
	if err := json.Unmarshal(v, &generic); err != nil {
		return fmt.Sprintf("<%d bytes>", len(v))
	}
	compact, err := json.Marshal(generic)
	if err != nil {
		return fmt.Sprintf("<%d bytes>", len(v))
	}
	s := string(compact)
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
