package postgres

import (
	"fmt"
	"time"

	"leadpage/backend/internal/domain"
)

// 远端 leads 表历史上经历过几次改名，线上可能同时存在
// 新旧两套列：id/uid/lead_id、name/nome、created_at/timestamp。
// 这里按固定优先级合并，保证上层始终拿到规范形态。

var (
	idColumns      = []string{"id", "uid", "lead_id"}
	nameColumns    = []string{"name", "nome"}
	createdColumns = []string{"created_at", "timestamp"}
)

// normalizeLead 把原始行合并为规范 Lead
func normalizeLead(row map[string]interface{}) domain.Lead {
	return domain.Lead{
		ID:        coalesceString(row, idColumns),
		Email:     coalesceString(row, []string{"email"}),
		Name:      coalesceString(row, nameColumns),
		CreatedAt: coalesceTime(row, createdColumns),
	}
}

// coalesceString 按优先级取第一个非空字符串值
func coalesceString(row map[string]interface{}, keys []string) string {
	for _, key := range keys {
		value, ok := row[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case []byte:
			if len(v) > 0 {
				return string(v)
			}
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// coalesceTime 按优先级取第一个可解析的时间值
func coalesceTime(row map[string]interface{}, keys []string) time.Time {
	for _, key := range keys {
		value, ok := row[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case time.Time:
			if !v.IsZero() {
				return v
			}
		case string:
			if t, err := parseTime(v); err == nil {
				return t
			}
		case []byte:
			if t, err := parseTime(string(v)); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func parseTime(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", value)
}
