package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenRecordVersionV1 = 1

var (
	errAlreadyUsed = errors.New("already used")

	ErrTokenNotFound    = errors.New("token record not found")
	ErrSecretExists     = errors.New("token secret already indexed")
	ErrRedisUnavailable = errors.New("token redis unavailable")
)

// TokenRecord is the persisted shape of one recovery token. Timestamps are
// unix seconds; SecretHash is the SHA-256 digest of the encoded secret.
type TokenRecord struct {
	ID         string
	UserID     string
	SecretHash [32]byte
	IssuedAt   int64
	ExpiresAt  int64
	Used       bool
	UsedAt     int64
	IPAddress  string
	UserAgent  string
}

// RecoveryTokenStore keeps token rows in Redis.
type RecoveryTokenStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRecoveryTokenStore(redisClient redis.UniversalClient, prefix string) *RecoveryTokenStore {
	if prefix == "" {
		prefix = "art"
	}
	return &RecoveryTokenStore{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *RecoveryTokenStore) tokenKey(id string) string {
	return s.prefix + ":tok:" + id
}

func (s *RecoveryTokenStore) secretKey(hash [32]byte) string {
	return s.prefix + ":sec:" + hex.EncodeToString(hash[:])
}

func (s *RecoveryTokenStore) userKey(userID string) string {
	return s.prefix + ":usr:" + userID
}

func (s *RecoveryTokenStore) expiryIndexKey() string {
	return s.prefix + ":exp"
}

func (s *RecoveryTokenStore) usedIndexKey() string {
	return s.prefix + ":used"
}

// Insert persists a new record and returns the generated id. The secret
// digest index is claimed first with SETNX; a collision fails the insert
// rather than silently linking two rows to one secret.
func (s *RecoveryTokenStore) Insert(ctx context.Context, record TokenRecord) (string, error) {
	record.ID = uuid.NewString()

	encoded, err := encodeTokenRecord(&record)
	if err != nil {
		return "", err
	}

	claimed, err := s.redis.SetNX(ctx, s.secretKey(record.SecretHash), record.ID, 0).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !claimed {
		return "", ErrSecretExists
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(record.ID), encoded, 0)
		pipe.SAdd(ctx, s.userKey(record.UserID), record.ID)
		pipe.ZAdd(ctx, s.expiryIndexKey(), redis.Z{Score: float64(record.ExpiresAt), Member: record.ID})
		return nil
	})
	if err != nil {
		// Roll back the index claim so a retry with the same secret is
		// not wedged behind a phantom row.
		_ = s.redis.Del(ctx, s.secretKey(record.SecretHash)).Err()
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return record.ID, nil
}

// FindBySecretHash resolves a record through the digest index, exact match
// only.
func (s *RecoveryTokenStore) FindBySecretHash(ctx context.Context, hash [32]byte) (TokenRecord, error) {
	id, err := s.redis.Get(ctx, s.secretKey(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return TokenRecord{}, ErrTokenNotFound
		}
		return TokenRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.getRecord(ctx, id)
}

func (s *RecoveryTokenStore) getRecord(ctx context.Context, id string) (TokenRecord, error) {
	data, err := s.redis.Get(ctx, s.tokenKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return TokenRecord{}, ErrTokenNotFound
		}
		return TokenRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	record, err := decodeTokenRecord(data)
	if err != nil {
		return TokenRecord{}, err
	}
	return *record, nil
}

// MarkUsed flips Used from false to true. Returns false without error when
// another caller already won; the record is never modified twice.
func (s *RecoveryTokenStore) MarkUsed(ctx context.Context, id string, usedAt int64) (bool, error) {
	const maxRetries = 4
	key := s.tokenKey(id)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeTokenRecord(data)
			if err != nil {
				return err
			}
			if record.Used {
				return errAlreadyUsed
			}

			record.Used = true
			record.UsedAt = usedAt

			updated, err := encodeTokenRecord(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				pipe.SRem(ctx, s.userKey(record.UserID), id)
				pipe.ZAdd(ctx, s.usedIndexKey(), redis.Z{Score: float64(usedAt), Member: id})
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, errAlreadyUsed):
				return false, nil
			case errors.Is(err, redis.Nil):
				return false, ErrTokenNotFound
			default:
				return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
			}
		}
		return true, nil
	}

	return false, fmt.Errorf("%w: mark-used contention not resolved", ErrRedisUnavailable)
}

// MarkAllUsed marks every unused token of the user, optionally excluding
// one id. Races with concurrent MarkUsed calls are benign: each row is
// still flipped at most once.
func (s *RecoveryTokenStore) MarkAllUsed(ctx context.Context, userID, excludeID string, usedAt int64) (int, error) {
	ids, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	count := 0
	for _, id := range ids {
		if id == excludeID {
			continue
		}
		ok, err := s.MarkUsed(ctx, id, usedAt)
		if err != nil {
			if errors.Is(err, ErrTokenNotFound) {
				// Swept concurrently; nothing to supersede.
				continue
			}
			return count, err
		}
		if ok {
			count++
		}
	}

	return count, nil
}

// DeleteExpiredOrStale removes unused rows past expiry and used rows older
// than staleBefore. Only terminal rows are touched, so it is safe to run
// concurrently with everything else.
func (s *RecoveryTokenStore) DeleteExpiredOrStale(ctx context.Context, now, staleBefore int64) (int, error) {
	expired, err := s.redis.ZRangeByScore(ctx, s.expiryIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(now, 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	stale, err := s.redis.ZRangeByScore(ctx, s.usedIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(staleBefore, 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	seen := make(map[string]struct{}, len(expired)+len(stale))
	deleted := 0
	for _, id := range append(expired, stale...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		record, err := s.getRecord(ctx, id)
		if err != nil {
			if errors.Is(err, ErrTokenNotFound) {
				// Row already gone; drop the dangling index entries.
				_ = s.redis.ZRem(ctx, s.expiryIndexKey(), id).Err()
				_ = s.redis.ZRem(ctx, s.usedIndexKey(), id).Err()
				continue
			}
			return deleted, err
		}

		// Used rows stay visible until staleBefore even when their expiry
		// has passed; they double as an audit trail of consumption.
		if record.Used && record.UsedAt >= staleBefore {
			continue
		}

		_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.tokenKey(id))
			pipe.Del(ctx, s.secretKey(record.SecretHash))
			pipe.SRem(ctx, s.userKey(record.UserID), id)
			pipe.ZRem(ctx, s.expiryIndexKey(), id)
			pipe.ZRem(ctx, s.usedIndexKey(), id)
			return nil
		})
		if err != nil {
			return deleted, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		deleted++
	}

	return deleted, nil
}

func encodeTokenRecord(record *TokenRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(tokenRecordVersionV1)
	if record.Used {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	if err := binary.Write(&buf, binary.BigEndian, record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.UsedAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.ID, record.UserID, record.IPAddress, record.UserAgent} {
		if len(field) > 65535 {
			return nil, errors.New("token record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}
	buf.Write(record.SecretHash[:])

	return buf.Bytes(), nil
}

func decodeTokenRecord(data []byte) (*TokenRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != tokenRecordVersionV1 {
		return nil, errors.New("invalid token record version")
	}

	usedByte, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &TokenRecord{
		Used: usedByte == 1,
	}

	if err := binary.Read(reader, binary.BigEndian, &record.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.UsedAt); err != nil {
		return nil, err
	}

	for _, target := range []*string{&record.ID, &record.UserID, &record.IPAddress, &record.UserAgent} {
		var fieldLen uint16
		if err := binary.Read(reader, binary.BigEndian, &fieldLen); err != nil {
			return nil, err
		}
		field := make([]byte, fieldLen)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		*target = string(field)
	}

	if _, err := io.ReadFull(reader, record.SecretHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
