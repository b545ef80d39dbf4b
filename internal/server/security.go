package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter 连接级速率限制：按 IP 统计每秒/每分钟请求数，超限临时封禁
type RateLimiter struct {
	maxPerSecond int
	maxPerMinute int
	banDuration  time.Duration

	mu      sync.Mutex
	seconds map[string]*slidingCount
	minutes map[string]*slidingCount
	banned  map[string]time.Time
}

type slidingCount struct {
	windowStart time.Time
	count       int
}

// NewRateLimiter 创建速率限制器
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		banDuration:  banDuration,
		seconds:      make(map[string]*slidingCount),
		minutes:      make(map[string]*slidingCount),
		banned:       make(map[string]time.Time),
	}
}

// Allow 检查该 IP 是否允许建立连接
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	if until, ok := rl.banned[ip]; ok {
		if now.Before(until) {
			return false
		}
		delete(rl.banned, ip)
	}

	if !rl.bump(rl.seconds, ip, now, time.Second, rl.maxPerSecond) ||
		!rl.bump(rl.minutes, ip, now, time.Minute, rl.maxPerMinute) {
		rl.banned[ip] = now.Add(rl.banDuration)
		return false
	}

	return true
}

// IsBanned 检查该 IP 是否处于封禁中
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	until, ok := rl.banned[ip]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(rl.banned, ip)
		return false
	}
	return true
}

// bump 滑动窗口计数，超限返回 false。调用方必须持有 rl.mu。
func (rl *RateLimiter) bump(m map[string]*slidingCount, ip string, now time.Time, window time.Duration, limit int) bool {
	c, ok := m[ip]
	if !ok || now.Sub(c.windowStart) > window {
		m[ip] = &slidingCount{windowStart: now, count: 1}
		return true
	}
	c.count++
	return c.count <= limit
}

// MessageRateLimiter 单连接消息速率限制，超过一半阈值先警告
type MessageRateLimiter struct {
	maxPerSecond int

	mu       sync.Mutex
	counts   map[string]*slidingCount
	warnings map[string]int
}

// NewMessageRateLimiter 创建消息速率限制器
func NewMessageRateLimiter(maxPerSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		maxPerSecond: maxPerSecond,
		counts:       make(map[string]*slidingCount),
		warnings:     make(map[string]int),
	}
}

// AllowMessage 检查该客户端是否允许发送消息，返回 (是否允许, 是否警告)
func (ml *MessageRateLimiter) AllowMessage(clientID string) (allowed, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	now := time.Now()
	c, ok := ml.counts[clientID]
	if !ok || now.Sub(c.windowStart) > time.Second {
		ml.counts[clientID] = &slidingCount{windowStart: now, count: 1}
		return true, false
	}

	c.count++
	warningThreshold := ml.maxPerSecond / 2
	if c.count > warningThreshold {
		warning = true
		ml.warnings[clientID]++
	}

	return c.count <= ml.maxPerSecond, warning
}

// GetWarningCount 获取该客户端的累计警告次数
func (ml *MessageRateLimiter) GetWarningCount(clientID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.warnings[clientID]
}

// ClearRateLimit 客户端断开后清理其计数
func (ml *MessageRateLimiter) ClearRateLimit(clientID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.counts, clientID)
	delete(ml.warnings, clientID)
}

// IPFilter IP 黑白名单。黑名单优先；配置了白名单则只放行白名单
type IPFilter struct {
	mu        sync.RWMutex
	blacklist map[string]struct{}
	whitelist map[string]struct{}
}

// NewIPFilter 创建 IP 过滤器
func NewIPFilter() *IPFilter {
	return &IPFilter{
		blacklist: make(map[string]struct{}),
		whitelist: make(map[string]struct{}),
	}
}

// IsAllowed 检查该 IP 是否放行
func (f *IPFilter) IsAllowed(ip string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, banned := f.blacklist[ip]; banned {
		return false
	}
	if len(f.whitelist) > 0 {
		_, ok := f.whitelist[ip]
		return ok
	}
	return true
}

// AddToBlacklist 加入黑名单
func (f *IPFilter) AddToBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[ip] = struct{}{}
}

// RemoveFromBlacklist 移出黑名单
func (f *IPFilter) RemoveFromBlacklist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blacklist, ip)
}

// AddToWhitelist 加入白名单
func (f *IPFilter) AddToWhitelist(ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whitelist[ip] = struct{}{}
}

// OriginChecker WebSocket 握手来源校验
type OriginChecker struct {
	allowAll bool
	allowed  map[string]struct{}
}

// NewOriginChecker 创建来源校验器
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]struct{})}
	for _, o := range origins {
		if o == "*" {
			oc.allowAll = true
			continue
		}
		oc.allowed[o] = struct{}{}
	}
	return oc
}

// Check 校验请求来源。无 Origin 头视为同源或本地客户端，放行。
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || oc.allowAll {
		return true
	}
	_, ok := oc.allowed[origin]
	return ok
}

// GetClientIP 获取真实客户端 IP，优先读代理头
func GetClientIP(r *http.Request) string {
	// X-Forwarded-For 的第一个 IP 是原始客户端
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
