package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/pumpwise/internal/dataset"
	"github.com/crimson-sun/pumpwise/internal/engine/gbdt"
	"github.com/crimson-sun/pumpwise/internal/engine/preprocess"
	"github.com/crimson-sun/pumpwise/internal/model"
	"github.com/crimson-sun/pumpwise/internal/store"
)

// splitSeed fixes the stratified split and cross-validation shuffles
// so training runs are reproducible.
const splitSeed = 42

// Train fits a fresh classifier and preprocessor on the dataset,
// evaluates on a stratified 20% hold-out, persists the artifacts and
// transitions to Ready. Training failures are logged and returned;
// they must reach the operator.
func (p *Predictor) Train(ctx context.Context, tbl *dataset.Table) (model.TrainingMetrics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.state
	p.state = Training

	metrics, err := p.train(ctx, tbl)
	if err != nil {
		p.state = prev
		slog.Error("error in model training", "error", err)
		return model.TrainingMetrics{}, err
	}

	p.state = Ready
	return metrics, nil
}

// train does the actual work under the write lock. The new model and
// preprocessor only replace the owned pair once everything succeeded.
func (p *Predictor) train(ctx context.Context, tbl *dataset.Table) (model.TrainingMetrics, error) {
	slog.Info("starting model training")

	if tbl == nil || tbl.Len() == 0 {
		return model.TrainingMetrics{}, ErrEmptyDataset
	}
	labels, err := tbl.Labels(model.LabelColumn)
	if err != nil {
		return model.TrainingMetrics{}, err
	}

	trainIdx, testIdx := stratifiedSplit(labels, 0.2, splitSeed)
	trainTbl := tbl.Select(trainIdx)
	testTbl := tbl.Select(testIdx)
	yTrain := pick(labels, trainIdx)
	yTest := pick(labels, testIdx)

	// Preprocessor parameters come from the training split only.
	pre := preprocess.New()
	xTrain, err := pre.FitTransform(trainTbl, p.features)
	if err != nil {
		return model.TrainingMetrics{}, err
	}
	xTest, err := pre.Transform(testTbl, p.features)
	if err != nil {
		return model.TrainingMetrics{}, err
	}

	var cvScores []float64
	if p.opts.CrossValidation {
		cvScores = p.crossValidate(ctx, xTrain, yTrain)
		mean, std := meanStd(cvScores)
		slog.Info("cross-validation accuracy", "mean", mean, "std", std)
	}

	clf := p.opts.NewClassifier()
	if err := clf.Fit(xTrain, yTrain); err != nil {
		return model.TrainingMetrics{}, fmt.Errorf("engine: fit: %w", err)
	}

	metrics, err := evaluate(clf, xTest, yTest)
	if err != nil {
		return model.TrainingMetrics{}, fmt.Errorf("engine: evaluate: %w", err)
	}
	metrics.CVScores = cvScores
	metrics.FeatureImportance = importanceMap(p.features, clf.FeatureImportances())

	slog.Info("model trained",
		"accuracy", metrics.Accuracy,
		"precision", metrics.Precision,
		"recall", metrics.Recall,
		"f1", metrics.F1)

	now := time.Now()
	p.persist(clf, pre, metrics.Accuracy, now)

	p.clf = clf
	p.pre = pre
	p.accuracy = metrics.Accuracy
	p.importance = metrics.FeatureImportance
	p.lastTrained = now

	return metrics, nil
}

// persist saves model + preprocessor and appends one metadata record.
// Save failures are logged; the in-memory model stays usable.
func (p *Predictor) persist(clf Classifier, pre *preprocess.Preprocessor, accuracy float64, now time.Time) {
	if p.store == nil {
		return
	}
	g, ok := clf.(interface{ State() gbdt.State })
	if !ok {
		slog.Warn("classifier is not persistable, skipping save")
		return
	}

	artifact := store.Artifact{
		Model:        g.State(),
		Preprocessor: pre.Params(),
		Accuracy:     accuracy,
		Features:     append([]string(nil), p.features...),
		SavedAt:      now,
	}
	if err := p.store.SaveModel(artifact); err != nil {
		slog.Error("error saving model", "error", err)
		return
	}

	meta := store.Metadata{
		RunID:     uuid.NewString(),
		Timestamp: now,
		Accuracy:  accuracy,
		Features:  append([]string(nil), p.features...),
		ModelType: ModelType,
		Version:   ModelVersion,
	}
	if err := p.store.AppendMetadata(meta); err != nil {
		slog.Error("error saving model metadata", "error", err)
		return
	}
	slog.Info("model saved")
}

// crossValidate runs 5-fold CV on the training split. Purely
// informational; it never gates training completion.
func (p *Predictor) crossValidate(_ context.Context, X [][]float64, y []int) []float64 {
	const folds = 5
	n := len(X)
	if n < folds {
		return nil
	}

	rng := rand.New(rand.NewSource(splitSeed))
	perm := rng.Perm(n)

	scores := make([]float64, 0, folds)
	for f := 0; f < folds; f++ {
		var trainX, valX [][]float64
		var trainY, valY []int
		for i, idx := range perm {
			if i%folds == f {
				valX = append(valX, X[idx])
				valY = append(valY, y[idx])
			} else {
				trainX = append(trainX, X[idx])
				trainY = append(trainY, y[idx])
			}
		}

		clf := p.opts.NewClassifier()
		if err := clf.Fit(trainX, trainY); err != nil {
			slog.Warn("cross-validation fold failed", "fold", f, "error", err)
			continue
		}
		correct := 0
		for i, x := range valX {
			if label, err := clf.Predict(x); err == nil && label == valY[i] {
				correct++
			}
		}
		scores = append(scores, float64(correct)/float64(len(valX)))
	}
	return scores
}

// evaluate computes accuracy, precision, recall and F1 on the
// held-out split.
func evaluate(clf Classifier, X [][]float64, y []int) (model.TrainingMetrics, error) {
	var tp, fp, tn, fn int
	for i, x := range X {
		label, err := clf.Predict(x)
		if err != nil {
			return model.TrainingMetrics{}, err
		}
		switch {
		case label == 1 && y[i] == 1:
			tp++
		case label == 1 && y[i] == 0:
			fp++
		case label == 0 && y[i] == 0:
			tn++
		default:
			fn++
		}
	}

	total := float64(len(X))
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(tp+tn) / total
	}
	precision := ratio(tp, tp+fp)
	recall := ratio(tp, tp+fn)
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return model.TrainingMetrics{
		Accuracy:  accuracy,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
	}, nil
}

// stratifiedSplit partitions row indices into train/test keeping the
// class balance of y, deterministically for a fixed seed.
func stratifiedSplit(y []int, testFraction float64, seed int64) (train, test []int) {
	byClass := map[int][]int{}
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range []int{0, 1} {
		idx := byClass[class]
		rng.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})
		nTest := int(math.Round(testFraction * float64(len(idx))))
		if nTest == len(idx) && len(idx) > 0 {
			nTest-- // keep at least one row of each class in train
		}
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	return train, test
}

func pick(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func meanStd(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	for _, v := range vals {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(vals)))
	return mean, std
}
