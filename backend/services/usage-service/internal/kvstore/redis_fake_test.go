package kvstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// fakeRedis answers the handful of commands RedisStore issues from an in-memory map, so a
// client with this hook never dials.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string

	// repeatKeys makes every SCAN page report its first key twice.
	repeatKeys bool
	mgetSizes  []int
}

func newFakeRedisClient() (*redis.Client, *fakeRedis) {
	fake := &fakeRedis{data: make(map[string]string)}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(fake)
	return client, fake
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("fake redis does not dial")
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		return errors.New("fake redis does not pipeline")
	}
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()

		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.BoolCmd: // setnx
			key := argString(args[1])
			if _, ok := f.data[key]; ok {
				c.SetVal(false)
				return nil
			}
			f.data[key] = argString(args[2])
			c.SetVal(true)
		case *redis.StatusCmd: // set
			f.data[argString(args[1])] = argString(args[2])
			c.SetVal("OK")
		case *redis.StringCmd: // get
			value, ok := f.data[argString(args[1])]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(value)
		case *redis.SliceCmd: // mget
			f.mgetSizes = append(f.mgetSizes, len(args)-1)
			values := make([]interface{}, 0, len(args)-1)
			for _, key := range args[1:] {
				if value, ok := f.data[argString(key)]; ok {
					values = append(values, value)
				} else {
					values = append(values, nil)
				}
			}
			c.SetVal(values)
		case *redis.ScanCmd:
			page, cursor, err := f.scan(args)
			if err != nil {
				c.SetErr(err)
				return err
			}
			c.SetVal(page, cursor)
		default:
			err := fmt.Errorf("fake redis: unsupported command %s", cmd.Name())
			cmd.SetErr(err)
			return err
		}
		return nil
	}
}

// scan pages through the sorted matching keys; the cursor is the offset of the next page.
func (f *fakeRedis) scan(args []interface{}) ([]string, uint64, error) {
	offset, err := strconv.ParseUint(argString(args[1]), 10, 64)
	if err != nil {
		return nil, 0, err
	}
	var pattern string
	count := 10
	for i := 2; i+1 < len(args); i += 2 {
		switch argString(args[i]) {
		case "match":
			pattern = argString(args[i+1])
		case "count":
			if count, err = strconv.Atoi(argString(args[i+1])); err != nil {
				return nil, 0, err
			}
		}
	}

	var matched []string
	for key := range f.data {
		if ok, _ := path.Match(pattern, key); pattern == "" || ok {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)

	start := min(int(offset), len(matched))
	end := min(start+count, len(matched))
	page := append([]string(nil), matched[start:end]...)
	if f.repeatKeys && len(page) > 0 {
		page = append(page, page[0])
	}
	var next uint64
	if end < len(matched) {
		next = uint64(end)
	}
	return page, next, nil
}

func argString(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
