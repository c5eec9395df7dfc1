package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"airport_service/pkg/auth"
	"airport_service/pkg/circuitbreaker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader  = "X-Idempotency-Key"
	idempotencyKeyPrefix  = "idempotency:"
	defaultIdempotencyTTL = 24 * time.Hour
	defaultProcessingTTL  = 60 * time.Second
)

type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord is what Redis holds for one key.
type IdempotencyRecord struct {
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ContentType  string            `json:"content_type"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RedisClient is the subset of *redis.Client the middleware needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type IdempotencyConfig struct {
	Redis         RedisClient
	Breaker       *circuitbreaker.CircuitBreaker
	Logger        *zap.Logger
	TTL           time.Duration
	ProcessingTTL time.Duration
}

// Idempotency replays the stored response for a repeated X-Idempotency-Key.
// Requests without the header pass through untouched. Any Redis failure, or
// an open breaker, lets the request through unprotected.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultIdempotencyTTL
	}
	if cfg.ProcessingTTL <= 0 {
		cfg.ProcessingTTL = defaultProcessingTTL
	}
	if cfg.Breaker == nil {
		cfg.Breaker = circuitbreaker.NewCircuitBreaker(5, 30*time.Second)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		hash := requestHash(c, body)
		redisKey := idempotencyRedisKey(c, key)
		ctx := c.Request.Context()

		existing, err := cfg.get(ctx, redisKey)
		if err != nil {
			cfg.Logger.Warn("idempotency lookup failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if existing != nil {
			replay(c, existing, hash)
			return
		}

		record := &IdempotencyRecord{Status: StatusProcessing, RequestHash: hash, CreatedAt: time.Now().UTC()}
		acquired, err := cfg.setNX(ctx, redisKey, record)
		if err != nil {
			cfg.Logger.Warn("idempotency lock failed, continuing without it", zap.Error(err))
			c.Next()
			return
		}
		if !acquired {
			if existing, _ = cfg.get(ctx, redisKey); existing != nil {
				replay(c, existing, hash)
				return
			}
		}

		rw := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rw
		c.Next()

		// Server errors are not cached so the client can retry.
		if c.Writer.Status() >= http.StatusInternalServerError {
			_ = cfg.Breaker.Execute(func() error { return cfg.Redis.Del(ctx, redisKey).Err() }, nil)
			return
		}
		record.Status = StatusCompleted
		record.ResponseCode = c.Writer.Status()
		record.ContentType = c.Writer.Header().Get("Content-Type")
		record.ResponseBody = rw.body.String()
		if err := cfg.set(ctx, redisKey, record); err != nil {
			cfg.Logger.Warn("idempotency record not saved", zap.String("key", key), zap.Error(err))
		}
	}
}

func replay(c *gin.Context, rec *IdempotencyRecord, hash string) {
	if rec.RequestHash != hash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "idempotency key already used with a different request"})
		return
	}
	if rec.Status == StatusProcessing {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a request with this idempotency key is already being processed"})
		return
	}
	c.Header("Idempotent-Replayed", "true")
	c.Data(rec.ResponseCode, rec.ContentType, []byte(rec.ResponseBody))
	c.Abort()
}

// idempotencyRedisKey scopes a client key to its caller, so two users can
// pick the same key independently. Anonymous callers share scope 0.
func idempotencyRedisKey(c *gin.Context, key string) string {
	id, _ := auth.UserIDFrom(c)
	return idempotencyKeyPrefix + strconv.FormatUint(uint64(id), 10) + ":" + key
}

// requestHash binds a key to method, path, caller and body.
func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if id, ok := auth.UserIDFrom(c); ok {
		h.Write([]byte(strconv.FormatUint(uint64(id), 10)))
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func (cfg IdempotencyConfig) get(ctx context.Context, key string) (*IdempotencyRecord, error) {
	var raw string
	err := cfg.Breaker.Execute(func() error {
		v, err := cfg.Redis.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		raw = v
		return err
	}, nil)
	if err != nil || raw == "" {
		return nil, err
	}
	var rec IdempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (cfg IdempotencyConfig) setNX(ctx context.Context, key string, rec *IdempotencyRecord) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	var ok bool
	err = cfg.Breaker.Execute(func() error {
		var err error
		ok, err = cfg.Redis.SetNX(ctx, key, string(data), cfg.ProcessingTTL).Result()
		return err
	}, nil)
	return ok, err
}

func (cfg IdempotencyConfig) set(ctx context.Context, key string, rec *IdempotencyRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return cfg.Breaker.Execute(func() error {
		return cfg.Redis.Set(ctx, key, string(data), cfg.TTL).Err()
	}, nil)
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
