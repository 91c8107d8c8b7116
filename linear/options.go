package linear

// Option は LinearRegression の設定を変更する関数
type Option func(*LinearRegression)

// WithFitIntercept は切片を推定するかどうかを設定する（既定: true）
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.FitIntercept = fit
	}
}

// WithRCond は特異値を打ち切る相対閾値を設定する
// 最大特異値 × rcond 未満の特異値は0として扱う（既定: 1e-10）
func WithRCond(rcond float64) Option {
	return func(lr *LinearRegression) {
		lr.RCond = rcond
	}
}
