package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sartorproj/goarima/autoarima"
	"github.com/sartorproj/goarima/timeseries"

	"github.com/meenubura/covidtrends/internal/config"
)

// MinObservations is the shortest series the model search accepts
const MinObservations = 30

// Forecaster runs the auto-ARIMA model search over daily new-case counts
type Forecaster struct {
	cfg config.ForecastConfig
}

// Result is a fitted model plus the fit diagnostics the report shows
type Result struct {
	Order           string // e.g. ARIMA(2,1,1)
	P, D, Q         int
	Seasonal        bool
	AIC             float64
	BIC             float64
	ModelsEvaluated int
	MAE             float64 // In-sample residual MAE
	RMSE            float64 // In-sample residual RMSE
	NaiveMAE        float64 // Last-value baseline MAE, for comparison

	fitted  *autoarima.Result
	allZero bool
}

// Point is one forecast step with its calendar date
type Point struct {
	Date  time.Time
	Value float64
}

// New creates a forecaster bounded by the configured search space
func New(cfg config.ForecastConfig) *Forecaster {
	return &Forecaster{cfg: cfg}
}

// Fit selects and fits the best ARIMA model for the series
func (f *Forecaster) Fit(values []float64) (*Result, error) {
	if len(values) < MinObservations {
		return nil, fmt.Errorf("series too short to fit: %d observations, need at least %d", len(values), MinObservations)
	}

	if allZero(values) {
		log.Warn().Msg("All-zero series, skipping model search")
		return &Result{Order: "zero", allZero: true}, nil
	}

	searchCfg := autoarima.DefaultConfig()
	searchCfg.MaxP = f.cfg.MaxP
	searchCfg.MaxD = f.cfg.MaxD
	searchCfg.MaxQ = f.cfg.MaxQ
	searchCfg.Seasonal = f.cfg.Seasonal
	searchCfg.SeasonalM = f.cfg.SeasonalPeriod
	searchCfg.Stepwise = true
	searchCfg.Criterion = f.cfg.Criterion

	startTime := time.Now()
	fitted, err := autoarima.AutoARIMA(timeseries.New(values), searchCfg)
	if err != nil {
		return nil, fmt.Errorf("auto-ARIMA search failed: %w", err)
	}
	if fitted == nil || (fitted.Model == nil && fitted.SeasonalModel == nil) {
		return nil, fmt.Errorf("auto-ARIMA search found no usable model")
	}

	r := &Result{
		P:               fitted.P,
		D:               fitted.D,
		Q:               fitted.Q,
		Seasonal:        fitted.IsSeasonal,
		AIC:             fitted.AIC,
		BIC:             fitted.BIC,
		ModelsEvaluated: fitted.ModelsEvaluated,
		fitted:          fitted,
	}

	if fitted.IsSeasonal {
		r.Order = fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]",
			fitted.P, fitted.D, fitted.Q, fitted.SP, fitted.SD, fitted.SQ, fitted.M)
	} else {
		r.Order = fmt.Sprintf("ARIMA(%d,%d,%d)", fitted.P, fitted.D, fitted.Q)
	}

	r.MAE, r.RMSE = residualErrors(fitted.Residuals())
	r.NaiveMAE = naiveMAE(values)

	log.Info().
		Str("order", r.Order).
		Float64("aic", r.AIC).
		Int("models_evaluated", r.ModelsEvaluated).
		Dur("duration", time.Since(startTime)).
		Msg("ARIMA model selected")

	return r, nil
}

// Horizon forecasts n steps past lastDate, one per day. Negative point
// forecasts clamp to 0 since case counts cannot go below zero.
func (r *Result) Horizon(n int, lastDate time.Time) ([]Point, error) {
	if n < 1 {
		return nil, fmt.Errorf("horizon must be at least 1, got %d", n)
	}

	points := make([]Point, n)

	if r.allZero {
		for i := range points {
			points[i] = Point{Date: lastDate.AddDate(0, 0, i+1)}
		}
		return points, nil
	}

	values, err := r.fitted.Predict(n)
	if err != nil {
		return nil, fmt.Errorf("forecast failed: %w", err)
	}
	if len(values) != n {
		return nil, fmt.Errorf("forecast returned %d steps, wanted %d", len(values), n)
	}

	for i, v := range values {
		if v < 0 || math.IsNaN(v) {
			v = 0
		}
		points[i] = Point{Date: lastDate.AddDate(0, 0, i+1), Value: v}
	}

	return points, nil
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

func residualErrors(residuals []float64) (mae, rmse float64) {
	if len(residuals) == 0 {
		return 0, 0
	}
	var sumAbs, sumSq float64
	for _, r := range residuals {
		sumAbs += math.Abs(r)
		sumSq += r * r
	}
	n := float64(len(residuals))
	return sumAbs / n, math.Sqrt(sumSq / n)
}

// naiveMAE scores the persistence forecast (tomorrow equals today)
func naiveMAE(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(values); i++ {
		sum += math.Abs(values[i] - values[i-1])
	}
	return sum / float64(len(values)-1)
}
