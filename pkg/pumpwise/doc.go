// Package pumpwise provides a predictive maintenance scoring engine
// for rotating industrial pumps: failure probability with discrete
// risk bands and maintenance recommendations per sensor snapshot, and
// unsupervised anomaly flags over historical sensor batches.
//
// Quick start:
//
//	eng, err := pumpwise.New(pumpwise.WithModelDir("models/"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := eng.Predict(ctx, pumpwise.Snapshot{
//	    "temperature": 78, "vibration_x": 3.1, "oil_level": 0.8,
//	})
//	fmt.Println(result.RiskLevel, result.FailureProbability)
//
// The Engine is safe for concurrent use once trained. Create once,
// reuse across requests.
package pumpwise
