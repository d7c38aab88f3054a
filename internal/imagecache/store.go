package imagecache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/Neuraplayapp/Neuraplayv8-sub000/internal/config"
)

// ErrStoreRequired 는 캐시가 필수인데 비활성화된 경우다.
var ErrStoreRequired = errors.New("image cache required but disabled")

const keyPrefix = "neuraplay:image:"

// Store 는 Valkey 기반 생성 이미지 캐시다. nil Store 는 항상 miss 로 동작한다.
type Store struct {
	client valkey.Client
	ttl    time.Duration
}

// NewStore 는 이미지 캐시를 생성한다. 비활성화되어 있으면 nil 을 반환한다.
func NewStore(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if !cfg.ImageCache.Enabled {
		if cfg.ImageCache.Required {
			return nil, ErrStoreRequired
		}
		return nil, nil
	}

	conn, err := parseStoreURL(cfg.ImageCache.URL)
	if err != nil {
		return nil, fmt.Errorf("parse image cache url: %w", err)
	}

	var tlsConfig *tls.Config
	if conn.useTLS {
		host, _, splitErr := net.SplitHostPort(conn.addr)
		if splitErr != nil {
			return nil, fmt.Errorf("parse image cache addr: %w", splitErr)
		}
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		TLSConfig:    tlsConfig,
		Username:     conn.username,
		Password:     conn.password,
		InitAddress:  []string{conn.addr},
		SelectDB:     conn.selectDB,
		DisableCache: cfg.ImageCache.DisableCache,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to valkey: %w", err)
	}

	return &Store{
		client: client,
		ttl:    time.Duration(cfg.ImageCache.TTLMinutes) * time.Minute,
	}, nil
}

// IsEnabled 는 캐시 사용 여부를 반환한다.
func (s *Store) IsEnabled() bool {
	return s != nil && s.client != nil
}

// Close 는 Valkey 연결을 종료한다.
func (s *Store) Close() {
	if !s.IsEnabled() {
		return
	}
	s.client.Close()
}

// Ping 은 연결 상태를 확인한다.
func (s *Store) Ping(ctx context.Context) error {
	if !s.IsEnabled() {
		return nil
	}
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping image cache: %w", err)
	}
	return nil
}

// Get 은 프롬프트에 해당하는 이미지 원본을 조회한다.
func (s *Store) Get(ctx context.Context, prompt string) ([]byte, bool, error) {
	if !s.IsEnabled() {
		return nil, false, nil
	}

	cmd := s.client.B().Get().Key(cacheKey(prompt)).Build()
	raw, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get image: %w", err)
	}

	data, err := decompressZstd(raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set 은 이미지 원본을 zstd 로 압축해 TTL 과 함께 저장한다.
func (s *Store) Set(ctx context.Context, prompt string, data []byte) error {
	if !s.IsEnabled() {
		return nil
	}

	compressed, err := compressZstd(data)
	if err != nil {
		return err
	}

	cmd := s.client.B().Set().Key(cacheKey(prompt)).Value(valkey.BinaryString(compressed)).Ex(s.ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	return nil
}

// cacheKey 는 긴 프롬프트를 고정 길이 키로 만든다.
func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return keyPrefix + hex.EncodeToString(sum[:])
}
