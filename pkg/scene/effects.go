package scene

import (
	"encoding/json"
	"maps"
	"math"
)

// Well-known effect keys. Everything else in an Effects map is passed
// through to the client untouched.
const (
	EffectAutoAdvanceAfterMs = "auto_advance_after_ms"
	EffectNextScene          = "next_scene"
	EffectDelay              = "delay"
)

// legacy camelCase spellings still found in older scene records
var effectAliases = map[string]string{
	EffectAutoAdvanceAfterMs: "autoAdvanceAfterMs",
	EffectNextScene:          "nextScene",
}

// Effects is a free-form map of client-side effects.
type Effects map[string]any

// Clone returns a shallow copy so callers can add keys without touching the
// source map.
func (e Effects) Clone() Effects {
	if e == nil {
		return nil
	}
	return maps.Clone(e)
}

func (e Effects) lookup(key string) (any, bool) {
	if v, ok := e[key]; ok && v != nil {
		return v, true
	}
	if alias, ok := effectAliases[key]; ok {
		if v, ok := e[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// AutoAdvanceAfterMs returns the auto-advance delay if one is configured.
func (e Effects) AutoAdvanceAfterMs() (int, bool) {
	v, ok := e.lookup(EffectAutoAdvanceAfterMs)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// Delay returns the delay (ms) the client should wait before applying a result.
func (e Effects) Delay() (int, bool) {
	v, ok := e.lookup(EffectDelay)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

// NextScene returns the default transition target if one is configured.
// Both {"scene_id":1,"subscene_id":2} and [1,2] forms are accepted.
func (e Effects) NextScene() (Key, bool) {
	v, ok := e.lookup(EffectNextScene)
	if !ok {
		return Key{}, false
	}

	switch t := v.(type) {
	case Key:
		return t, t.SceneID > 0 && t.SubsceneID > 0
	case *Key:
		if t == nil {
			return Key{}, false
		}
		return *t, t.SceneID > 0 && t.SubsceneID > 0
	case map[string]any:
		sid, ok1 := toInt(t["scene_id"])
		ssid, ok2 := toInt(t["subscene_id"])
		if !ok1 || !ok2 {
			sid, ok1 = toInt(t["sceneId"])
			ssid, ok2 = toInt(t["subsceneId"])
		}
		if !ok1 || !ok2 || sid < 1 || ssid < 1 {
			return Key{}, false
		}
		return Key{SceneID: sid, SubsceneID: ssid}, true
	case []any:
		if len(t) != 2 {
			return Key{}, false
		}
		sid, ok1 := toInt(t[0])
		ssid, ok2 := toInt(t[1])
		if !ok1 || !ok2 || sid < 1 || ssid < 1 {
			return Key{}, false
		}
		return Key{SceneID: sid, SubsceneID: ssid}, true
	}
	return Key{}, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}
