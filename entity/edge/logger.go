package edge

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "edge")
