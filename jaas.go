// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logkafka

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// jaasClientSection is the section Kafka clients read their login from.
const jaasClientSection = "KafkaClient"

// jaasEntry is one login module entry of a JAAS configuration file:
//
//	com.sun.security.auth.module.Krb5LoginModule required
//	    useKeyTab=true
//	    keyTab="/etc/kafka/client.keytab"
//	    principal="client@EXAMPLE.COM";
type jaasEntry struct {
	Module  string
	Flag    string
	Options map[string]string
}

// moduleName returns the unqualified login module class name.
func (e jaasEntry) moduleName() string {
	if i := strings.LastIndexByte(e.Module, '.'); i >= 0 {
		return e.Module[i+1:]
	}
	return e.Module
}

// boolOption reports whether the option is set to "true".
func (e jaasEntry) boolOption(key string) bool {
	return strings.EqualFold(e.Options[key], "true")
}

// parseJAAS parses a JAAS configuration and returns the entries of the
// named section.
func parseJAAS(src, section string) ([]jaasEntry, error) {
	toks, err := jaasTokens(src)
	if err != nil {
		return nil, err
	}

	sections := make(map[string][]jaasEntry)
	for i := 0; i < len(toks); {
		name := toks[i]
		if i+1 >= len(toks) || toks[i+1] != "{" {
			return nil, fmt.Errorf("jaas: expected '{' after section %q", name)
		}
		i += 2

		var entries []jaasEntry
		for i < len(toks) && toks[i] != "}" {
			if i+1 >= len(toks) {
				return nil, fmt.Errorf("jaas: incomplete entry in section %q", name)
			}
			entry := jaasEntry{
				Module:  toks[i],
				Flag:    toks[i+1],
				Options: make(map[string]string),
			}
			i += 2

			for i < len(toks) && toks[i] != ";" {
				if i+2 >= len(toks) || toks[i+1] != "=" {
					return nil, fmt.Errorf("jaas: malformed option %q in section %q", toks[i], name)
				}
				entry.Options[toks[i]] = toks[i+2]
				i += 3
			}
			if i >= len(toks) {
				return nil, fmt.Errorf("jaas: missing ';' in section %q", name)
			}
			i++ // ;
			entries = append(entries, entry)
		}
		if i >= len(toks) {
			return nil, fmt.Errorf("jaas: missing '}' for section %q", name)
		}
		i++ // }
		if i < len(toks) && toks[i] == ";" {
			i++
		}
		sections[name] = entries
	}

	entries, ok := sections[section]
	if !ok || len(entries) == 0 {
		return nil, fmt.Errorf("jaas: no %q section", section)
	}
	return entries, nil
}

// jaasTokens splits a JAAS configuration into words, quoted strings and the
// punctuation { } ; =.  Comments in // and /* */ form are skipped.
func jaasTokens(src string) ([]string, error) {
	var toks []string
	r := []rune(src)

	for i := 0; i < len(r); {
		c := r[i]
		switch {
		case unicode.IsSpace(c):
			i++

		case c == '/' && i+1 < len(r) && r[i+1] == '/':
			for i < len(r) && r[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < len(r) && r[i+1] == '*':
			j := i + 2
			for j+1 < len(r) && (r[j] != '*' || r[j+1] != '/') {
				j++
			}
			if j+1 >= len(r) {
				return nil, errors.New("jaas: unterminated comment")
			}
			i = j + 2

		case c == '{' || c == '}' || c == ';' || c == '=':
			toks = append(toks, string(c))
			i++

		case c == '"':
			var b strings.Builder
			i++
			for i < len(r) && r[i] != '"' {
				if r[i] == '\\' && i+1 < len(r) {
					i++
				}
				b.WriteRune(r[i])
				i++
			}
			if i >= len(r) {
				return nil, errors.New("jaas: unterminated string")
			}
			i++
			toks = append(toks, b.String())

		default:
			start := i
			for i < len(r) && !unicode.IsSpace(r[i]) && !strings.ContainsRune("{};=\"", r[i]) {
				i++
			}
			toks = append(toks, string(r[start:i]))
		}
	}

	return toks, nil
}
