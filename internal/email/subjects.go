package email

const subjectAlertFmt = "[%s] %s"
