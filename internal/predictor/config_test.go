package predictor

import "testing"

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	valid := Config{K: 2, Method: MethodRegression, MetricFuncType: DistanceFuncTypeEuclidean, ModePolicy: ModePolicyNearest, Workers: 1}
	tests := []struct {
		name   string
		mutate func(c *Config)
		err    bool
	}{
		{name: "positive", mutate: func(c *Config) {}},
		{name: "lower_case", mutate: func(c *Config) { c.MetricFuncType = "manhattan"; c.ModePolicy = "strict" }},
		{name: "zero_k", mutate: func(c *Config) { c.K = 0 }, err: true},
		{name: "method", mutate: func(c *Config) { c.Method = "median" }, err: true},
		{name: "distance", mutate: func(c *Config) { c.MetricFuncType = "COSINE" }, err: true},
		{name: "policy", mutate: func(c *Config) { c.ModePolicy = "RANDOM" }, err: true},
		{name: "workers", mutate: func(c *Config) { c.Workers = -1 }, err: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			test.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != test.err {
				t.Errorf("validate got: %v, expected error: %v", err, test.err)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		expected Method
		err      bool
	}{
		{in: "regression", expected: MethodRegression},
		{in: " Classification ", expected: MethodClassification},
		{in: "mean", err: true},
	}
	for _, test := range tests {
		got, err := ParseMethod(test.in)
		if (err != nil) != test.err {
			t.Errorf("parse %q got error %v", test.in, err)
			continue
		}
		if !test.err && got != test.expected {
			t.Errorf("parse %q got: %s, expected: %s", test.in, got, test.expected)
		}
	}
}
