package testkit

// AutoSlicingMetricsJSON is AutoSlicingMetrics in protojson form, one
// MetricsForSlice per line. Wrapper values appear both bare and as
// {"value": x} objects.
const AutoSlicingMetricsJSON = `{"sliceKey":{},"metricKeysAndValues":[{"key":{"name":"accuracy"},"value":{"boundedValue":{"value":0.8,"lowerBound":0.5737843,"upperBound":1.0262157,"methodology":"POISSON_BOOTSTRAP"},"confidenceInterval":{"lowerBound":{"value":0.5737843},"upperBound":{"value":1.0262157},"tDistributionValue":{"sampleMean":{"value":0.8},"sampleStandardDeviation":{"value":0.1},"sampleDegreesOfFreedom":{"value":9},"unsampledValue":{"value":0.8}}}}},{"key":{"name":"example_count"},"value":{"boundedValue":{"value":1500},"confidenceInterval":{"tDistributionValue":{"sampleMean":1500,"sampleStandardDeviation":0,"sampleDegreesOfFreedom":9,"unsampledValue":1500}}}}]}
{"sliceKey":{"singleSliceKeys":[{"column":"transformed_age","int64Value":"1"}]},"metricKeysAndValues":[{"key":{"name":"accuracy"},"value":{"boundedValue":{"value":0.4},"confidenceInterval":{"tDistributionValue":{"sampleMean":0.4,"sampleStandardDeviation":0.1,"sampleDegreesOfFreedom":9,"unsampledValue":0.4}}}},{"key":{"name":"example_count"},"value":{"boundedValue":{"value":500},"confidenceInterval":{"tDistributionValue":{"sampleMean":500,"sampleStandardDeviation":0,"sampleDegreesOfFreedom":9,"unsampledValue":500}}}}]}
{"sliceKey":{"singleSliceKeys":[{"column":"transformed_age","int64Value":"2"}]},"metricKeysAndValues":[{"key":{"name":"accuracy"},"value":{"boundedValue":{"value":0.79},"confidenceInterval":{"tDistributionValue":{"sampleMean":0.79,"sampleStandardDeviation":0.1,"sampleDegreesOfFreedom":9,"unsampledValue":0.79}}}},{"key":{"name":"example_count"},"value":{"boundedValue":{"value":500},"confidenceInterval":{"tDistributionValue":{"sampleMean":500,"sampleStandardDeviation":0,"sampleDegreesOfFreedom":9,"unsampledValue":500}}}}]}
{"sliceKey":{"singleSliceKeys":[{"column":"transformed_age","int64Value":3}]},"metricKeysAndValues":[{"key":{"name":"accuracy"},"value":{"boundedValue":{"value":0.9},"confidenceInterval":{"tDistributionValue":{"sampleMean":0.9,"sampleStandardDeviation":0.1,"sampleDegreesOfFreedom":9,"unsampledValue":0.9}}}},{"key":{"name":"example_count"},"value":{"boundedValue":{"value":500},"confidenceInterval":{"tDistributionValue":{"sampleMean":500,"sampleStandardDeviation":0,"sampleDegreesOfFreedom":9,"unsampledValue":500}}}}]}
{"sliceKey":{"singleSliceKeys":[{"column":"country","bytesValue":"VVNB"}]},"metricKeysAndValues":[{"key":{"name":"accuracy"},"value":{"boundedValue":{"value":0.9},"confidenceInterval":{"tDistributionValue":{"sampleMean":0.9,"sampleStandardDeviation":0.1,"sampleDegreesOfFreedom":9,"unsampledValue":0.9}}}},{"key":{"name":"example_count"},"value":{"boundedValue":{"value":500},"confidenceInterval":{"tDistributionValue":{"sampleMean":500,"sampleStandardDeviation":0,"sampleDegreesOfFreedom":9,"unsampledValue":500}}}}]}
`

// AutoSlicingStatisticsJSON is AutoSlicingStatistics as a protojson
// DatasetFeatureStatisticsList. The age feature omits "type" because INT is
// the enum default and protojson drops defaults.
const AutoSlicingStatisticsJSON = `{
  "datasets": [{
    "numExamples": "1500",
    "features": [
      {"path": {"step": ["country"]}, "type": "STRING", "stringStats": {"unique": "10"}},
      {"path": {"step": ["age"]}, "numStats": {
        "commonStats": {"numNonMissing": "1500", "minNumValues": "1", "maxNumValues": "1"},
        "histograms": [{
          "buckets": [
            {"lowValue": 1, "highValue": 6.0, "sampleCount": 500},
            {"lowValue": 6.0, "highValue": 12.0, "sampleCount": 500},
            {"lowValue": 12.0, "highValue": 18.0, "sampleCount": 500}
          ],
          "type": "QUANTILES"
        }]
      }}
    ]
  }]
}`
