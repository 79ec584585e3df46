package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Fitter --dir ../domain/points --output domain/points --outpkg pointsmock --filename fitter_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Queue --dir ../domain/recalc --output domain/recalc --outpkg recalcmock --filename queue_mock.go
