package config

// MetricsConfig enables the optional observability sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies fallback values for optional fields.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":9090"
	}
}
