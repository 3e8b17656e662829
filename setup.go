package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cardlink/go-cardlink-server/email"
	"github.com/cardlink/go-cardlink-server/global"
	"github.com/cardlink/go-cardlink-server/repository"
	"github.com/cardlink/go-cardlink-server/services"
	"github.com/cardlink/go-cardlink-server/types"
)

// Register external modules that implement the email Sender interface
func RegisterEmailSenders(conf *global.Config) {
	if conf.Mailgun.Domain != "" {
		sender := email.NewMailgunSender(conf.Mailgun.Domain, conf.Mailgun.SendApiKey, conf.Mailgun.Sender)
		email.RegisterSender(conf.Mailgun.Domain, sender)
	}
}

// Configure DB Repositories and create DB Selector
func ConfigDBSelector() repository.DBSelector {
	// configure Repository (couchDB)
	repoUrl := global.Conf.CouchDB.Scheme + "://" + global.Conf.CouchDB.Host + ":" + strconv.Itoa(global.Conf.CouchDB.Port)
	userRepo, userRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Users, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	cardRepo, cardRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Cards, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	contactsRepo, contactsRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Contacts, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)
	statisticsRepo, statisticsRepoErr := repository.NewCouchDBRepository(repoUrl, repository.Statistics, global.Conf.CouchDB.Username, global.Conf.CouchDB.Password, false)

	repoErr := errors.Join(userRepoErr, cardRepoErr, contactsRepoErr, statisticsRepoErr)
	if repoErr != nil {
		global.Logger.Log("error", "Failed to create repositories", "error", repoErr.Error())
		panic(repoErr)
	}

	// REPOSITORY definitions
	dbSelector := repository.NewCouchDBSelector()
	dbSelector.AddDB(userRepo)
	dbSelector.AddDB(cardRepo)
	dbSelector.AddDB(contactsRepo)
	dbSelector.AddDB(statisticsRepo)

	return dbSelector
}

func ConfigDBIndexing(dbSelector *repository.CouchDBSelector, environment *types.Environment) {
	statisticsService := services.NewStatisticsService(dbSelector, environment)

	// Create INDEXES
	userRepo, uErr := dbSelector.ChooseDB(repository.Users)
	if uErr != nil {
		panic(uErr)
	}
	cardRepo, cErr := dbSelector.ChooseDB(repository.Cards)
	if cErr != nil {
		panic(cErr)
	}
	contactsRepo, ctErr := dbSelector.ChooseDB(repository.Contacts)
	if ctErr != nil {
		panic(ctErr)
	}

	if err := repository.CreateEmailIndex(userRepo); err != nil {
		panic(err)
	}
	if err := repository.CreateOwnerAddressIndex(cardRepo); err != nil {
		panic(err)
	}
	if err := repository.CreateOwnerAddressIndex(contactsRepo); err != nil {
		panic(err)
	}

	// cron job for flushing scan/save counters into the database
	flushMinutes := global.Conf.Statistics.FlushMinutes
	if flushMinutes <= 0 {
		flushMinutes = 5
	}
	environment.Cron.AddFunc(fmt.Sprintf("@every %dm", flushMinutes), statisticsService.FlushStatistics)
	environment.Cron.Start()
	go statisticsService.FlushStatistics() // run once on startup
}

func ConfigS3Storage(conf *global.Config, env *types.Environment) {
	// configure S3 storage
	credentials := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(conf.Storage.Key, conf.Storage.Secret, ""))
	awsConf, err := config.LoadDefaultConfig(context.TODO(), config.WithCredentialsProvider(credentials), config.WithRegion(conf.Storage.Region))
	if err != nil {
		panic(err)
	}
	s3Client := s3.NewFromConfig(awsConf)
	uploader := manager.NewUploader(s3Client)
	downloader := manager.NewDownloader(s3Client)
	env.AddS3Uploader(uploader)
	env.AddS3Downloader(downloader)

	env.S3Client = s3Client
}
