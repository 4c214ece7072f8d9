// File: services/metrics.go
package services

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"zeus-tournaments/logger"
)

// Metrics records the outcome of every backend operation.
type Metrics interface {
	ObserveCall(operation string, took time.Duration, err error)
}

// NoopMetrics discards observations.
type NoopMetrics struct{}

func (NoopMetrics) ObserveCall(string, time.Duration, error) {}

func (NoopMetrics) PublishGauge(string, float64) {}

// Namespace for all metrics of this application
const metricsNamespace = "ZeusTournaments"

// CloudWatchMetrics publishes latency and failure counts per operation.
type CloudWatchMetrics struct {
	cw cloudwatchiface.CloudWatchAPI
}

// NewCloudWatchMetrics builds a client from the default AWS credential chain.
func NewCloudWatchMetrics() (*CloudWatchMetrics, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return &CloudWatchMetrics{cw: cloudwatch.New(sess)}, nil
}

// ObserveCall publishes off the caller's path; a failed publish is only logged.
func (m *CloudWatchMetrics) ObserveCall(operation string, took time.Duration, err error) {
	data := []*cloudwatch.MetricDatum{
		datum("BackendCallLatencyMs", float64(took.Milliseconds()), cloudwatch.StandardUnitMilliseconds, operation),
	}
	if err != nil {
		data = append(data, datum("BackendCallFailures", 1, cloudwatch.StandardUnitCount, operation))
	}
	go m.put(data)
}

// PublishGauge publishes a point-in-time count such as open connections.
func (m *CloudWatchMetrics) PublishGauge(name string, value float64) {
	go m.put([]*cloudwatch.MetricDatum{{
		MetricName: aws.String(name),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(value),
		Unit:       aws.String(cloudwatch.StandardUnitCount),
	}})
}

func (m *CloudWatchMetrics) put(data []*cloudwatch.MetricDatum) {
	_, err := m.cw.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(metricsNamespace),
		MetricData: data,
	})
	if err != nil {
		logger.Error.Printf("[CloudWatchMetrics.put] CloudWatch metric failed: %v", err)
	}
}

func datum(name string, value float64, unit, operation string) *cloudwatch.MetricDatum {
	return &cloudwatch.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: []*cloudwatch.Dimension{
			{
				Name:  aws.String("Operation"),
				Value: aws.String(operation),
			},
		},
		Timestamp: aws.Time(time.Now()),
		Value:     aws.Float64(value),
		Unit:      aws.String(unit),
	}
}
