package db

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// PgpassPath returns the platform-appropriate password file path, honoring $PGPASSFILE.
func PgpassPath() string {
	if custom := os.Getenv("PGPASSFILE"); custom != "" {
		return custom
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "postgresql", "pgpass.conf")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pgpass")
}

// LookupPgpass returns the password of the first entry in the file at path
// matching host, port, database and user. "*" matches any value.
// A missing or unreadable file yields no match.
func LookupPgpass(path, host string, port int, database, user string) (string, bool) {
	if path == "" {
		return "", false
	}
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	want := []string{host, strconv.Itoa(port), database, user}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitPgpass(line)
		if len(fields) != 5 {
			continue
		}
		if matchPgpass(fields[:4], want) {
			return fields[4], true
		}
	}
	return "", false
}

func matchPgpass(fields, want []string) bool {
	for i, f := range fields {
		if f != "*" && f != want[i] {
			return false
		}
	}
	return true
}

// splitPgpass splits on unescaped colons and unescapes \: and \\.
func splitPgpass(line string) []string {
	var fields []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}
