// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dsn

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var portPattern = regexp.MustCompile(`^\d+$`)

// serverURL parses user:password@host:port/database URLs for one server
// database type.
type serverURL struct {
	typ         SourceType
	schemes     []string
	defaultPort string
	format      string
}

func (s serverURL) parse(dsn string) (*DSNInfo, error) {
	if dsn == "" {
		return nil, NewParseError(dsn, "empty DSN", "provide a connection string like "+s.format)
	}

	remainder := ""
	for _, scheme := range s.schemes {
		prefix := scheme + "://"
		if len(dsn) >= len(prefix) && strings.EqualFold(dsn[:len(prefix)], prefix) {
			remainder = dsn[len(prefix):]
			break
		}
	}
	if remainder == "" {
		return nil, NewParseError(dsn, "missing or invalid scheme", "use "+strings.Join(s.schemes, ":// or ")+"://")
	}

	// url.Parse rejects unencoded special characters in passwords; those
	// fall back to splitting on the last @.
	if parsed, err := url.Parse(dsn); err == nil && parsed.User != nil {
		return s.fromURL(parsed, dsn)
	}
	return s.split(remainder, dsn)
}

func (s serverURL) fromURL(parsed *url.URL, original string) (*DSNInfo, error) {
	info := &DSNInfo{
		Type:     s.typ,
		Host:     parsed.Hostname(),
		Port:     parsed.Port(),
		User:     parsed.User.Username(),
		Database: strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")),
		Params:   make(map[string]string),
		Original: original,
	}
	info.Password, _ = parsed.User.Password()
	for key, values := range parsed.Query() {
		if len(values) > 0 {
			info.Params[key] = values[0]
		}
	}
	if info.Port == "" {
		info.Port = s.defaultPort
	}
	return info, s.check(info)
}

func (s serverURL) split(remainder, original string) (*DSNInfo, error) {
	info := &DSNInfo{
		Type:     s.typ,
		Port:     s.defaultPort,
		Params:   make(map[string]string),
		Original: original,
	}

	at := strings.LastIndex(remainder, "@")
	if at == -1 {
		return nil, NewParseError(original, "missing @ separator", "format should be "+s.format)
	}
	info.User, info.Password, _ = strings.Cut(remainder[:at], ":")

	hostPart, dbAndParams, ok := strings.Cut(remainder[at+1:], "/")
	if !ok {
		return nil, NewParseError(original, "missing / before database name", "format should be "+s.format)
	}
	host, port, hasPort := strings.Cut(hostPart, ":")
	info.Host = host
	if hasPort {
		info.Port = port
	}

	db, params, _ := strings.Cut(dbAndParams, "?")
	info.Database = strings.TrimSpace(db)
	if params != "" {
		for _, param := range strings.Split(params, "&") {
			if k, v, ok := strings.Cut(param, "="); ok {
				info.Params[k] = v
			}
		}
	}
	return info, s.check(info)
}

func (s serverURL) check(info *DSNInfo) error {
	switch {
	case strings.TrimSpace(info.User) == "":
		return NewParseError(info.Original, "missing username", "provide username in format "+s.format)
	case strings.TrimSpace(info.Host) == "":
		return NewParseError(info.Original, "missing host", "provide host in format "+s.format)
	case strings.TrimSpace(info.Database) == "":
		return NewParseError(info.Original, "missing database name", "provide database in format "+s.format)
	}
	return nil
}

func (s serverURL) validate(dsn string) error {
	info, err := s.parse(dsn)
	if err != nil {
		return err
	}
	if info.Port != "" && !portPattern.MatchString(info.Port) {
		return NewParseError(dsn, fmt.Sprintf("invalid port number: %s", info.Port), "port must be numeric")
	}
	return nil
}
