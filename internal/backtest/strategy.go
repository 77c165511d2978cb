package backtest

import (
	"fmt"
	"math"
	"strings"
)

// SMACrossover goes long when the fast average crosses above the slow
// one and exits on the reverse cross.
type SMACrossover struct {
	Fast int
	Slow int
}

func (s SMACrossover) Name() string {
	return "sma_crossover"
}

func (s SMACrossover) fastColumn() string {
	return fmt.Sprintf("sma_%d", s.Fast)
}

func (s SMACrossover) slowColumn() string {
	return fmt.Sprintf("sma_%d", s.Slow)
}

func (s SMACrossover) Columns() []string {
	return []string{s.fastColumn(), s.slowColumn()}
}

func (s SMACrossover) Next(row RowView) Signal {
	fast := row.Value(s.fastColumn())
	slow := row.Value(s.slowColumn())
	prevFast := row.Lookback(s.fastColumn(), 1)
	prevSlow := row.Lookback(s.slowColumn(), 1)
	if math.IsNaN(fast) || math.IsNaN(slow) || math.IsNaN(prevFast) || math.IsNaN(prevSlow) {
		return Hold
	}

	// Crossover detection
	if prevFast <= prevSlow && fast > slow {
		return Buy
	}
	if prevFast >= prevSlow && fast < slow {
		return Sell
	}
	return Hold
}

// TrendThreshold enters when the average per-row slope rises above
// Enter and exits when it falls below Exit.
type TrendThreshold struct {
	Window int
	Enter  float64
	Exit   float64
}

func (s TrendThreshold) Name() string {
	return "trend_threshold"
}

func (s TrendThreshold) column() string {
	return fmt.Sprintf("trend_%d", s.Window)
}

func (s TrendThreshold) Columns() []string {
	return []string{s.column()}
}

func (s TrendThreshold) Next(row RowView) Signal {
	slope := row.Value(s.column())
	if math.IsNaN(slope) {
		return Hold
	}
	if slope > s.Enter {
		return Buy
	}
	if slope < s.Exit {
		return Sell
	}
	return Hold
}

// StochReversal buys when %K crosses up out of the oversold band and
// sells when it crosses down out of the overbought band.
type StochReversal struct {
	Window     int
	Oversold   float64
	Overbought float64
}

func (s StochReversal) Name() string {
	return "stoch_reversal"
}

func (s StochReversal) column() string {
	return fmt.Sprintf("stochk_%d", s.Window)
}

func (s StochReversal) Columns() []string {
	return []string{s.column()}
}

func (s StochReversal) Next(row RowView) Signal {
	k := row.Value(s.column())
	prev := row.Lookback(s.column(), 1)
	if math.IsNaN(k) || math.IsNaN(prev) {
		return Hold
	}
	if prev <= s.Oversold && k > s.Oversold {
		return Buy
	}
	if prev >= s.Overbought && k < s.Overbought {
		return Sell
	}
	return Hold
}

// StrategyOptions carries the tunable parameters of the builtin
// strategies. Zero fields fall back to each strategy's defaults.
type StrategyOptions struct {
	Fast       int
	Slow       int
	Window     int
	Enter      float64
	Exit       float64
	Oversold   float64
	Overbought float64
}

// StrategyNames lists the builtin strategy names.
func StrategyNames() []string {
	return []string{"sma_crossover", "stoch_reversal", "trend_threshold"}
}

// Builtin returns the named builtin strategy configured from opts.
func Builtin(name string, opts StrategyOptions) (Strategy, error) {
	switch strings.ToLower(name) {
	case "sma_crossover":
		fast, slow := opts.Fast, opts.Slow
		if fast <= 0 {
			fast = 10
		}
		if slow <= 0 {
			slow = 20
		}
		return SMACrossover{Fast: fast, Slow: slow}, nil

	case "trend_threshold":
		window := opts.Window
		if window < 2 {
			window = 10
		}
		return TrendThreshold{Window: window, Enter: opts.Enter, Exit: opts.Exit}, nil

	case "stoch_reversal":
		window := opts.Window
		if window <= 0 {
			window = 14
		}
		oversold, overbought := opts.Oversold, opts.Overbought
		if oversold <= 0 {
			oversold = 20
		}
		if overbought <= 0 {
			overbought = 80
		}
		return StochReversal{Window: window, Oversold: oversold, Overbought: overbought}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q", name)
}
