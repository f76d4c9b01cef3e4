package errors

import "google.golang.org/grpc/codes"

// Recommender service errors. Service code 30, format AABBCCC.
var (
	// ErrQueryRequired is returned when the query field is missing or empty.
	// The message is part of the wire contract and must not change.
	ErrQueryRequired = Register(New(MakeCode(ServiceRecommender, CategoryRequest, 1), 400, codes.InvalidArgument, "Query is required"))

	// ErrNotReady is returned while catalog load and index build are still running.
	ErrNotReady = Register(New(MakeCode(ServiceRecommender, CategoryNetwork, 1), 503, codes.Unavailable, "Service is starting up"))

	// ErrStartupFailed is returned when catalog load or index build failed.
	ErrStartupFailed = Register(New(MakeCode(ServiceRecommender, CategoryNetwork, 2), 503, codes.Unavailable, "Service failed to start"))

	// ErrUpstreamUnavailable is returned when the embedding provider or vector
	// store call fails.
	ErrUpstreamUnavailable = Register(New(MakeCode(ServiceRecommender, CategoryNetwork, 3), 503, codes.Unavailable, "Recommendation backend unavailable"))

	// ErrQueryTimeout is returned when the embed plus search phase exceeds the
	// configured deadline.
	ErrQueryTimeout = Register(New(MakeCode(ServiceRecommender, CategoryTimeout, 1), 504, codes.DeadlineExceeded, "Recommendation query timed out"))

	// ErrStatsUnavailable is returned when collecting service statistics fails.
	ErrStatsUnavailable = Register(New(MakeCode(ServiceRecommender, CategoryInternal, 1), 500, codes.Internal, "Statistics unavailable"))
)
