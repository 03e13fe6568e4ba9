// Package pricing は価格表示用のフォーマット処理を提供する。
package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatPrice は1日あたり価格をK表記の表示文字列に変換する。
//
// 1000以上は千単位に変換する（1500 → "1.5K"、2000 → "2K"）。
// 1000未満はそのままの数値にkを付ける（500 → "500k"）。
// nil・空文字列・数値に解釈できない値・負数は"0K"を返す。
// 文字列入力は桁区切りカンマを除去してから解釈する。
func FormatPrice(price interface{}) string {
	num, ok := toNumber(price)
	if !ok || num < 0 {
		return "0K"
	}

	if num >= 1000 {
		thousands := num / 1000
		if thousands == math.Trunc(thousands) {
			return fmt.Sprintf("%dK", int64(thousands))
		}
		return fmt.Sprintf("%.1fK", thousands)
	}

	if num == math.Trunc(num) {
		return fmt.Sprintf("%dk", int64(math.Round(num)))
	}
	return fmt.Sprintf("%.1fk", num)
}

// toNumber は価格入力を数値に変換する。変換できない場合はfalseを返す。
func toNumber(price interface{}) (float64, bool) {
	switch v := price.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
