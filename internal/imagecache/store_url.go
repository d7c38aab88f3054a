package imagecache

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const defaultPort = "6379"

type storeConnInfo struct {
	addr     string
	username string
	password string
	selectDB int
	useTLS   bool
}

// parseStoreURL 은 redis://, rediss:// URL 또는 host[:port] 주소를 해석한다.
func parseStoreURL(raw string) (storeConnInfo, error) {
	if strings.TrimSpace(raw) == "" {
		return storeConnInfo{}, errors.New("image cache url is empty")
	}

	if !strings.Contains(raw, "://") {
		return parseStoreAddr(raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return storeConnInfo{}, fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "redis" && parsed.Scheme != "rediss" && parsed.Scheme != "valkey" {
		return storeConnInfo{}, fmt.Errorf("unsupported image cache scheme: %s", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return storeConnInfo{}, errors.New("image cache host missing")
	}

	port := parsed.Port()
	if port == "" {
		port = defaultPort
	}

	selectDB := 0
	if path := strings.TrimPrefix(parsed.Path, "/"); strings.TrimSpace(path) != "" {
		db, err := strconv.Atoi(path)
		if err != nil {
			return storeConnInfo{}, fmt.Errorf("invalid image cache db: %w", err)
		}
		if db < 0 {
			return storeConnInfo{}, errors.New("invalid image cache db")
		}
		selectDB = db
	}

	info := storeConnInfo{
		addr:     net.JoinHostPort(host, port),
		selectDB: selectDB,
		useTLS:   strings.EqualFold(parsed.Scheme, "rediss"),
	}
	if parsed.User != nil {
		info.username = parsed.User.Username()
		info.password, _ = parsed.User.Password()
	}
	return info, nil
}

func parseStoreAddr(addr string) (storeConnInfo, error) {
	trimmed := strings.TrimSpace(addr)
	host, port, err := net.SplitHostPort(trimmed)
	if err != nil {
		var addrErr *net.AddrError
		if !errors.As(err, &addrErr) {
			return storeConnInfo{}, fmt.Errorf("invalid image cache address: %w", err)
		}
		switch addrErr.Err {
		case "missing port in address":
			host = strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
			port = defaultPort
		case "too many colons in address":
			host = trimmed
			port = defaultPort
		default:
			return storeConnInfo{}, fmt.Errorf("invalid image cache address: %w", err)
		}
	}

	if strings.TrimSpace(host) == "" {
		return storeConnInfo{}, errors.New("image cache host missing")
	}

	return storeConnInfo{addr: net.JoinHostPort(host, port)}, nil
}
