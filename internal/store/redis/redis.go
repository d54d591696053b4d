package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/mockorbit/interviewd/internal/domain"
	"github.com/mockorbit/interviewd/internal/store"
)

// Config represents the Redis store config structure.
type Config struct {
	Address     string        `mapstructure:"address"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	ActiveConns int           `mapstructure:"active_conns"`
	IdleConns   int           `mapstructure:"idle_conns"`
	Timeout     time.Duration `mapstructure:"timeout"`

	// PrefixInterview is a format string for the interview hash key, eg: "interview:%s".
	PrefixInterview string `mapstructure:"prefix_interview"`
}

// Redis reads interview hashes published by the REST API.
type Redis struct {
	cfg  *Config
	pool *redis.Pool
}

type interview struct {
	Interviewer string `redis:"interviewer"`
	Interviewee string `redis:"interviewee"`
	Status      string `redis:"status"`
}

// New returns a new Redis store.
func New(cfg Config) (*Redis, error) {
	if cfg.PrefixInterview == "" {
		cfg.PrefixInterview = "interview:%s"
	}
	pool := &redis.Pool{
		Wait:      true,
		MaxActive: cfg.ActiveConns,
		MaxIdle:   cfg.IdleConns,
		Dial: func() (redis.Conn, error) {
			return redis.Dial(
				"tcp",
				cfg.Address,
				redis.DialPassword(cfg.Password),
				redis.DialConnectTimeout(cfg.Timeout),
				redis.DialReadTimeout(cfg.Timeout),
				redis.DialWriteTimeout(cfg.Timeout),
				redis.DialDatabase(cfg.DB),
			)
		},
	}

	// Test connection.
	c := pool.Get()
	defer c.Close()

	if err := c.Err(); err != nil {
		return nil, err
	}
	return &Redis{cfg: &cfg, pool: pool}, nil
}

// GetInterview gets an interview hash from the store.
func (r *Redis) GetInterview(_ context.Context, id domain.RoomID) (domain.Interview, error) {
	c := r.pool.Get()
	defer c.Close()

	res, err := redis.Values(c.Do("HGETALL", fmt.Sprintf(r.cfg.PrefixInterview, id)))
	if err != nil {
		return domain.Interview{}, err
	}
	if len(res) == 0 {
		return domain.Interview{}, store.ErrInterviewNotFound
	}
	var iv interview
	if err := redis.ScanStruct(res, &iv); err != nil {
		return domain.Interview{}, err
	}
	return domain.Interview{
		ID:          id,
		Interviewer: domain.UserID(iv.Interviewer),
		Interviewee: domain.UserID(iv.Interviewee),
		Status:      domain.InterviewStatus(iv.Status),
	}, nil
}

// Close releases the pool.
func (r *Redis) Close() error {
	return r.pool.Close()
}
