package email

const subjectEventNotificationFmt = "Avance registrado: %s"
