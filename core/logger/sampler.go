package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler admits num out of every den debug events using a
// deterministic rotating counter. num=0 suppresses sampled output
// entirely, num>=den admits everything.
type ratioSampler struct {
	mu      sync.Mutex
	num     int
	den     int
	counter int
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the sampling ratio and resets the rotation counter.
func (s *ratioSampler) Set(num, den int) {
	if num < 0 {
		num = 0
	}
	if den <= 0 {
		den = 1
	}
	if num > den {
		num = den
	}
	s.mu.Lock()
	s.num = num
	s.den = den
	s.counter = 0
	s.mu.Unlock()
}

// Allow reports whether the current event falls into the sampled slice.
func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.num == 0 {
		return false
	}
	if s.num >= s.den {
		return true
	}
	idx := s.counter
	s.counter++
	if s.counter >= s.den {
		s.counter = 0
	}
	return idx < s.num
}

// parseRatioSpec parses "1/50", "1:50" or a bare numerator "50"
// (meaning 1/50). "0" disables sampling and returns (0, 0).
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 1, 50
	}
	if spec == "0" || strings.EqualFold(spec, "off") {
		return 0, 0
	}
	sep := "/"
	if !strings.Contains(spec, sep) {
		sep = ":"
	}
	if strings.Contains(spec, sep) {
		parts := strings.SplitN(spec, sep, 2)
		num, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		den, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return 1, 50
		}
		return num, den
	}
	den, err := strconv.Atoi(spec)
	if err != nil || den <= 0 {
		return 1, 50
	}
	return 1, den
}
